// backend-go/internal/domain/models.go
package domain

import "time"

// Store represents a store location
type Store struct {
	ID        int64     `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Category groups products; a shelf only carries products of its own category.
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Staff is a store employee who can receive restock tasks.
type Staff struct {
	ID      int64  `json:"id" db:"id"`
	StoreID int64  `json:"store_id" db:"store_id"`
	Name    string `json:"name" db:"name"`
	Role    string `json:"role" db:"role"`
}

// Product is a sellable SKU.
type Product struct {
	ID          int64   `json:"id" db:"id"`
	SKU         string  `json:"sku" db:"sku"`
	Name        string  `json:"name" db:"name"`
	CategoryID  int64   `json:"category_id" db:"category_id"`
	PackageSize float64 `json:"package_size" db:"package_size"`
	Unit        string  `json:"unit" db:"unit"`
}

// Shelf is a physical shelf in a store.
type Shelf struct {
	ID         int64  `json:"id" db:"id"`
	Code       string `json:"code" db:"code"`
	StoreID    int64  `json:"store_id" db:"store_id"`
	CategoryID int64  `json:"category_id" db:"category_id"`
	Capacity   int    `json:"capacity" db:"capacity"`
	Location   string `json:"location" db:"location"`
}

// ProductShelf is the current on-shelf inventory of one product on one shelf.
// Shelf fields are populated by joined reads and ignored on writes.
type ProductShelf struct {
	ID              int64      `json:"id" db:"id"`
	ProductID       int64      `json:"product_id" db:"product_id"`
	ShelfID         int64      `json:"shelf_id" db:"shelf_id"`
	Quantity        int        `json:"quantity" db:"quantity"`
	MaxCapacity     int        `json:"max_capacity" db:"max_capacity"`
	LastRestockedAt *time.Time `json:"last_restocked_at" db:"last_restocked_at"`

	ProductName   string `json:"product_name" db:"product_name"`
	ShelfCode     string `json:"shelf_code" db:"shelf_code"`
	ShelfCapacity int    `json:"shelf_capacity" db:"shelf_capacity"`
	StoreID       int64  `json:"store_id" db:"store_id"`
}

// SalesHistory is one immutable sale record.
type SalesHistory struct {
	ID        int64     `json:"id" db:"id"`
	StoreID   int64     `json:"store_id" db:"store_id"`
	ProductID int64     `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	SaleTime  time.Time `json:"sale_time" db:"sale_time"`
}

// ReplenishmentAlert flags a product/shelf pair predicted to run low.
type ReplenishmentAlert struct {
	ID                     int64     `json:"id" db:"id"`
	ProductID              int64     `json:"product_id" db:"product_id"`
	ShelfID                int64     `json:"shelf_id" db:"shelf_id"`
	PredictedDepletionDate time.Time `json:"predicted_depletion_date" db:"predicted_depletion_date"`
	Urgency                string    `json:"urgency" db:"urgency"`
	Status                 string    `json:"status" db:"status"`
	CreatedAt              time.Time `json:"created_at" db:"created_at"`
}

// StockRequest asks the warehouse for stock to refill a shelf.
type StockRequest struct {
	ID                     int64      `json:"id" db:"id"`
	StoreID                int64      `json:"store_id" db:"store_id"`
	ProductID              int64      `json:"product_id" db:"product_id"`
	Quantity               int        `json:"quantity" db:"quantity"`
	DeliveryStatus         string     `json:"delivery_status" db:"delivery_status"`
	RequestDate            time.Time  `json:"request_date" db:"request_date"`
	RequestedDeliveryDate  time.Time  `json:"requested_delivery_date" db:"requested_delivery_date"`
	AlertID                *int64     `json:"alert_id" db:"alert_id"`
	EstimatedTimeOfArrival *time.Time `json:"estimated_time_of_arrival" db:"estimated_time_of_arrival"`
}

// DeliveredStockRequest archives a request once it reaches delivered.
type DeliveredStockRequest struct {
	ID             int64     `json:"id" db:"id"`
	StockRequestID int64     `json:"stock_request_id" db:"stock_request_id"`
	AlertID        *int64    `json:"alert_id" db:"alert_id"`
	ProductID      int64     `json:"product_id" db:"product_id"`
	StoreID        int64     `json:"store_id" db:"store_id"`
	Quantity       int       `json:"quantity" db:"quantity"`
	DeliveredAt    time.Time `json:"delivered_at" db:"delivered_at"`
	IsProcessed    bool      `json:"is_processed" db:"is_processed"`
}

// DeliveryStatusLog is one entry of a stock request's status history.
type DeliveryStatusLog struct {
	ID                     int64      `json:"id" db:"id"`
	StockRequestID         int64      `json:"stock_request_id" db:"stock_request_id"`
	Status                 string     `json:"status" db:"status"`
	EstimatedTimeOfArrival *time.Time `json:"estimated_time_of_arrival" db:"estimated_time_of_arrival"`
	ChangedAt              time.Time  `json:"changed_at" db:"changed_at"`
}

// RestockTask asks a staff member to put delivered stock on a shelf.
type RestockTask struct {
	ID                int64      `json:"id" db:"id"`
	AlertID           *int64     `json:"alert_id" db:"alert_id"`
	DeliveredID       *int64     `json:"delivered_id" db:"delivered_id"`
	ProductID         int64      `json:"product_id" db:"product_id"`
	ShelfID           int64      `json:"shelf_id" db:"shelf_id"`
	AssignedTo        int64      `json:"assigned_to" db:"assigned_to"`
	Status            string     `json:"status" db:"status"`
	AssignedAt        time.Time  `json:"assigned_at" db:"assigned_at"`
	CompletedAt       *time.Time `json:"completed_at" db:"completed_at"`
	QuantityRestocked int        `json:"quantity_restocked" db:"quantity_restocked"`
}

// DepletionPrediction is the predictor's view of one product/shelf pair.
type DepletionPrediction struct {
	ProductID             int64     `json:"product_id"`
	ProductName           string    `json:"product_name"`
	ShelfID               int64     `json:"shelf_id"`
	ShelfCode             string    `json:"shelf_code"`
	CurrentQuantity       int       `json:"current_quantity"`
	AverageDailySales     float64   `json:"average_daily_sales"`
	DaysToDepletion       float64   `json:"days_to_depletion"`
	ExpectedDepletionDate time.Time `json:"expected_depletion_date"`
	IsLowStock            bool      `json:"is_low_stock"`
	Urgency               string    `json:"urgency"`
}

// PredictionResult bundles a depletion scan with the alerts it raised.
type PredictionResult struct {
	Predictions   []DepletionPrediction `json:"predictions"`
	AlertsCreated []ReplenishmentAlert  `json:"alerts_created"`
}

// StockRequestSummary is returned by the request generator.
type StockRequestSummary struct {
	RequestID              int64     `json:"request_id"`
	AlertID                int64     `json:"alert_id"`
	ProductID              int64     `json:"product_id"`
	StoreID                int64     `json:"store_id"`
	Quantity               int       `json:"quantity"`
	Urgency                string    `json:"urgency"`
	RequestedDeliveryDate  time.Time `json:"requested_delivery_date"`
	EstimatedTimeOfArrival time.Time `json:"estimated_time_of_arrival"`
}

// AssignmentResult describes one task assignment run.
type AssignmentResult struct {
	Message  string        `json:"message"`
	Created  []RestockTask `json:"created"`
	Skipped  int           `json:"skipped"`
	Eligible int           `json:"eligible"`
}

// OrganizeResult reports a finished restock.
type OrganizeResult struct {
	Message       string      `json:"message"`
	Task          RestockTask `json:"task"`
	ShelfQuantity int         `json:"shelf_quantity"`
}
