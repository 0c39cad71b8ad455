package analytics

import (
	"fmt"
	"sort"

	"salespulse/pkg/contracts/domain"
)

// accumulator holds the running totals of one group.
type accumulator struct {
	key       string
	sales     float64
	profit    float64
	orders    int
	units     float64
	customers map[string]struct{}
}

func (a *accumulator) add(r domain.SalesRecord) {
	a.sales += r.TotalRevenue
	a.profit += r.TotalProfit
	a.orders++
	a.units += r.Quantity
	a.customers[r.Customer] = struct{}{}
}

// finalize derives the ratios from the raw totals.
func (a *accumulator) finalize() domain.AggregateResult {
	return domain.AggregateResult{
		Key:           a.key,
		TotalSales:    a.sales,
		TotalProfit:   a.profit,
		ProfitMargin:  Margin(a.profit, a.sales),
		OrderCount:    a.orders,
		UnitsSold:     a.units,
		CustomerCount: len(a.customers),
	}
}

// grouping folds records into accumulators in first-seen key order.
type grouping struct {
	order  []*accumulator
	byKey  map[string]*accumulator
	keyFor func(domain.SalesRecord) string
}

func newGrouping(keyFor func(domain.SalesRecord) string) *grouping {
	return &grouping{byKey: make(map[string]*accumulator), keyFor: keyFor}
}

func (g *grouping) fold(records []domain.SalesRecord) *grouping {
	for _, r := range records {
		key := g.keyFor(r)
		acc, ok := g.byKey[key]
		if !ok {
			acc = &accumulator{key: key, customers: make(map[string]struct{})}
			g.byKey[key] = acc
			g.order = append(g.order, acc)
		}
		acc.add(r)
	}
	return g
}

func (g *grouping) results() []domain.AggregateResult {
	out := make([]domain.AggregateResult, len(g.order))
	for i, acc := range g.order {
		out[i] = acc.finalize()
	}
	return out
}

// Margin is profit / sales * 100, or 0 when sales is 0.
func Margin(profit, sales float64) float64 {
	if sales == 0 {
		return 0
	}
	return profit / sales * 100
}

// keyFunc returns the group key extractor of a dimension.
func keyFunc(d domain.Dimension) (func(domain.SalesRecord) string, error) {
	switch d {
	case domain.DimensionDepartment:
		return func(r domain.SalesRecord) string { return DepartmentOf(r.Product) }, nil
	case domain.DimensionCustomer:
		return func(r domain.SalesRecord) string { return r.Customer }, nil
	case domain.DimensionProduct:
		return func(r domain.SalesRecord) string { return r.Product }, nil
	case domain.DimensionRepresentative:
		return func(r domain.SalesRecord) string { return r.SalesRep }, nil
	default:
		return nil, fmt.Errorf("unknown dimension %q", d)
	}
}

// Aggregate groups records by dimension. Departments come back in first-seen
// order; every other dimension is sorted by total sales, highest first, with
// ties kept in first-seen order. An empty input yields an empty result.
func Aggregate(records []domain.SalesRecord, d domain.Dimension) ([]domain.AggregateResult, error) {
	keyFor, err := keyFunc(d)
	if err != nil {
		return nil, err
	}

	results := newGrouping(keyFor).fold(records).results()
	if d != domain.DimensionDepartment {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].TotalSales > results[j].TotalSales
		})
	}
	return results, nil
}

// mustAggregate is Aggregate for the dimensions known at compile time.
func mustAggregate(records []domain.SalesRecord, d domain.Dimension) []domain.AggregateResult {
	results, err := Aggregate(records, d)
	if err != nil {
		panic(err)
	}
	return results
}

// ByDepartment is the department view, in first-seen order.
func ByDepartment(records []domain.SalesRecord) []domain.DepartmentSales {
	results := mustAggregate(records, domain.DimensionDepartment)
	out := make([]domain.DepartmentSales, len(results))
	for i, r := range results {
		out[i] = domain.DepartmentSales{
			Department:   r.Key,
			TotalSales:   r.TotalSales,
			TotalProfit:  r.TotalProfit,
			ProfitMargin: r.ProfitMargin,
		}
	}
	return out
}

// ByCustomer is the customer view with order counts.
func ByCustomer(records []domain.SalesRecord) []domain.CustomerSales {
	results := mustAggregate(records, domain.DimensionCustomer)
	out := make([]domain.CustomerSales, len(results))
	for i, r := range results {
		out[i] = domain.CustomerSales{
			Customer:     r.Key,
			TotalSales:   r.TotalSales,
			TotalProfit:  r.TotalProfit,
			ProfitMargin: r.ProfitMargin,
			OrderCount:   r.OrderCount,
		}
	}
	return out
}

// ByProduct is the product view with units sold.
func ByProduct(records []domain.SalesRecord) []domain.ProductSales {
	results := mustAggregate(records, domain.DimensionProduct)
	out := make([]domain.ProductSales, len(results))
	for i, r := range results {
		out[i] = domain.ProductSales{
			Product:      r.Key,
			TotalSales:   r.TotalSales,
			TotalProfit:  r.TotalProfit,
			ProfitMargin: r.ProfitMargin,
			UnitsSold:    r.UnitsSold,
		}
	}
	return out
}

// ByRepresentative is the sales representative view. CustomerCount counts
// distinct customers.
func ByRepresentative(records []domain.SalesRecord) []domain.SalesRepPerformance {
	results := mustAggregate(records, domain.DimensionRepresentative)
	out := make([]domain.SalesRepPerformance, len(results))
	for i, r := range results {
		out[i] = domain.SalesRepPerformance{
			Name:          r.Key,
			TotalSales:    r.TotalSales,
			TotalProfit:   r.TotalProfit,
			ProfitMargin:  r.ProfitMargin,
			CustomerCount: r.CustomerCount,
			OrderCount:    r.OrderCount,
		}
	}
	return out
}
