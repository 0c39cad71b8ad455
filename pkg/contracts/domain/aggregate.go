package domain

// Dimension is a grouping key for aggregation.
type Dimension string

const (
	DimensionDepartment     Dimension = "department"
	DimensionCustomer       Dimension = "customer"
	DimensionProduct        Dimension = "product"
	DimensionRepresentative Dimension = "representative"
)

// Dimensions lists every supported dimension in display order.
var Dimensions = []Dimension{
	DimensionDepartment,
	DimensionCustomer,
	DimensionProduct,
	DimensionRepresentative,
}

// Valid reports whether d is a known dimension.
func (d Dimension) Valid() bool {
	for _, known := range Dimensions {
		if d == known {
			return true
		}
	}
	return false
}

// AggregateResult is one finalized group of an aggregation run. The counters are
// all filled; typed views below expose the one that matters for each dimension.
type AggregateResult struct {
	Key           string  `json:"key"`
	TotalSales    float64 `json:"total_sales"`
	TotalProfit   float64 `json:"total_profit"`
	ProfitMargin  float64 `json:"profit_margin"`
	OrderCount    int     `json:"order_count"`
	UnitsSold     float64 `json:"units_sold"`
	CustomerCount int     `json:"customer_count"`
}

// DepartmentSales is the department view.
type DepartmentSales struct {
	Department   string  `json:"department"`
	TotalSales   float64 `json:"total_sales"`
	TotalProfit  float64 `json:"total_profit"`
	ProfitMargin float64 `json:"profit_margin"`
}

// CustomerSales is the customer view.
type CustomerSales struct {
	Customer     string  `json:"customer"`
	TotalSales   float64 `json:"total_sales"`
	TotalProfit  float64 `json:"total_profit"`
	ProfitMargin float64 `json:"profit_margin"`
	OrderCount   int     `json:"order_count"`
}

// ProductSales is the product view.
type ProductSales struct {
	Product      string  `json:"product"`
	TotalSales   float64 `json:"total_sales"`
	TotalProfit  float64 `json:"total_profit"`
	ProfitMargin float64 `json:"profit_margin"`
	UnitsSold    float64 `json:"units_sold"`
}

// SalesRepPerformance is the sales representative view. CustomerCount is the
// number of distinct customers, not the number of orders.
type SalesRepPerformance struct {
	Name          string  `json:"name"`
	TotalSales    float64 `json:"total_sales"`
	TotalProfit   float64 `json:"total_profit"`
	ProfitMargin  float64 `json:"profit_margin"`
	CustomerCount int     `json:"customer_count"`
	OrderCount    int     `json:"order_count"`
}
