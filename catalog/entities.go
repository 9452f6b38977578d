package catalog

import "time"

// PurchaseStrategy selects how a department picks between supplier offers.
type PurchaseStrategy string

const (
	// StrategyCheapest prefers the lowest total price.
	StrategyCheapest PurchaseStrategy = "cheapest"
	// StrategyFastest prefers the shortest delivery time.
	StrategyFastest PurchaseStrategy = "fastest"
	// StrategyComplex defers to free-form policy text evaluated by the agent.
	StrategyComplex PurchaseStrategy = "complex"
)

// Valid reports whether s is one of the known strategies.
func (s PurchaseStrategy) Valid() bool {
	switch s {
	case StrategyCheapest, StrategyFastest, StrategyComplex:
		return true
	default:
		return false
	}
}

// User is an employee who can raise purchase requests.
type User struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	DepartmentID string `json:"department_id"`
}

// Department carries the purchasing policy applied to its members.
type Department struct {
	DepartmentID      string           `json:"department_id"`
	Name              string           `json:"name"`
	AllowedCategories []string         `json:"allowed_categories"`
	PurchaseStrategy  PurchaseStrategy `json:"purchase_strategy"`
	MonthlyBudget     float64          `json:"monthly_budget"`
	RequiresAudit     bool             `json:"requires_audit"`
}

// DepartmentBudget is the budget position of a department at read time.
// Remaining may be negative when the department has overspent.
type DepartmentBudget struct {
	DepartmentID    string    `json:"department_id"`
	MonthlyBudget   float64   `json:"monthly_budget"`
	SpentThisMonth  float64   `json:"spent_this_month"`
	RemainingBudget float64   `json:"remaining_budget"`
	LastUpdated     time.Time `json:"last_updated"`
}

// Product is a catalog entry independent of any supplier.
type Product struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Supplier provides products. ReliabilityScore ranges 0-10.
type Supplier struct {
	SupplierID       string  `json:"supplier_id"`
	Name             string  `json:"name"`
	ReliabilityScore float64 `json:"reliability_score"`
	ContactInfo      string  `json:"contact_info"`
}

// ProductDetails is one supplier's offer for a product.
type ProductDetails struct {
	ProductID    string  `json:"product_id"`
	SupplierID   string  `json:"supplier_id"`
	Price        float64 `json:"price"`
	Availability string  `json:"availability"`
	DeliveryDays int     `json:"delivery_days"`
	MinimumOrder int     `json:"minimum_order"`
}
