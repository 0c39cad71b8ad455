package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/pkg/contracts/domain"
)

func TestDepartmentOf(t *testing.T) {
	tests := []struct {
		product string
		want    string
	}{
		{"Basil", "Herbs"},
		{"Thai BASIL 1kg", "Herbs"},
		{"Carrot", "Roots"},
		{"Red Pepper", "Vegetables"},
		{"Kale", "Leafy Greens"},
		{"Swiss Chard", "Leafy Greens"},
		{"Tomato", OtherDepartment},
		{"", OtherDepartment},
	}
	for _, tt := range tests {
		t.Run(tt.product, func(t *testing.T) {
			assert.Equal(t, tt.want, DepartmentOf(tt.product))
		})
	}
}

func TestAggregate_ByDepartment(t *testing.T) {
	records := []domain.SalesRecord{
		sale("Basil", 100, 5),
		sale("Carrot", 50, 10),
	}

	got := ByDepartment(records)
	require.Len(t, got, 2)

	assert.Equal(t, "Herbs", got[0].Department)
	assert.InDelta(t, 100, got[0].TotalSales, 1e-9)
	assert.InDelta(t, 5, got[0].TotalProfit, 1e-9)
	assert.InDelta(t, 5.0, got[0].ProfitMargin, 1e-9)

	assert.Equal(t, "Roots", got[1].Department)
	assert.InDelta(t, 20.0, got[1].ProfitMargin, 1e-9)
}

func TestAggregate_DepartmentKeepsFirstSeenOrder(t *testing.T) {
	records := []domain.SalesRecord{
		sale("Kale", 1, 0),
		sale("Basil", 500, 0),
		sale("Tomato", 10, 0),
		sale("Chard", 2, 0),
	}

	got := ByDepartment(records)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Leafy Greens", "Herbs", "Other"},
		[]string{got[0].Department, got[1].Department, got[2].Department})
	assert.InDelta(t, 3, got[0].TotalSales, 1e-9)
}

func TestAggregate_SortedBySalesWithStableTies(t *testing.T) {
	records := []domain.SalesRecord{
		{Product: "A", Customer: "Zed", TotalRevenue: 10},
		{Product: "B", Customer: "Amy", TotalRevenue: 30},
		{Product: "C", Customer: "Bob", TotalRevenue: 10},
		{Product: "D", Customer: "Amy", TotalRevenue: 5},
	}

	got := ByCustomer(records)
	require.Len(t, got, 3)
	assert.Equal(t, "Amy", got[0].Customer)
	assert.Equal(t, 2, got[0].OrderCount)
	assert.InDelta(t, 35, got[0].TotalSales, 1e-9)
	// Zed and Bob tie at 10; Zed was seen first.
	assert.Equal(t, "Zed", got[1].Customer)
	assert.Equal(t, "Bob", got[2].Customer)
}

func TestAggregate_ProductUnits(t *testing.T) {
	records := []domain.SalesRecord{
		{Product: "Basil", Quantity: 3, TotalRevenue: 30, TotalProfit: 3},
		{Product: "Basil", Quantity: 2, TotalRevenue: 20, TotalProfit: 2},
		{Product: "Kale", Quantity: 1, TotalRevenue: 100, TotalProfit: 50},
	}

	got := ByProduct(records)
	require.Len(t, got, 2)
	assert.Equal(t, "Kale", got[0].Product)
	assert.Equal(t, "Basil", got[1].Product)
	assert.InDelta(t, 5, got[1].UnitsSold, 1e-9)
	assert.InDelta(t, 10.0, got[1].ProfitMargin, 1e-9)
}

func TestAggregate_RepresentativeCountsDistinctCustomers(t *testing.T) {
	records := []domain.SalesRecord{
		{Product: "Basil", SalesRep: "Ann", Customer: "Shop 1", TotalRevenue: 10},
		{Product: "Basil", SalesRep: "Ann", Customer: "Shop 1", TotalRevenue: 10},
		{Product: "Kale", SalesRep: "Ann", Customer: "Shop 2", TotalRevenue: 10},
		{Product: "Kale", SalesRep: "Ben", Customer: "Shop 1", TotalRevenue: 5},
	}

	got := ByRepresentative(records)
	require.Len(t, got, 2)
	assert.Equal(t, "Ann", got[0].Name)
	assert.Equal(t, 2, got[0].CustomerCount)
	assert.Equal(t, 3, got[0].OrderCount)
	assert.Equal(t, "Ben", got[1].Name)
	assert.Equal(t, 1, got[1].CustomerCount)
}

func TestAggregate_ZeroSalesMarginIsZero(t *testing.T) {
	free := sale("Basil sample", 0, -3)
	free.Customer = "Acme"
	free.SalesRep = "Ann"
	balanced := sale("Carrot", 10, 1)
	balanced.Customer = "Bolt"
	balanced.SalesRep = "Ben"
	refund := sale("Carrot", -10, 0)
	refund.Customer = "Bolt"
	refund.SalesRep = "Ben"

	for _, d := range domain.Dimensions {
		t.Run(string(d), func(t *testing.T) {
			got, err := Aggregate([]domain.SalesRecord{free, balanced, refund}, d)
			require.NoError(t, err)
			require.Len(t, got, 2)
			for _, g := range got {
				assert.Equal(t, 0.0, g.TotalSales, g.Key)
				assert.Equal(t, 0.0, g.ProfitMargin, g.Key)
				assert.False(t, math.IsNaN(g.ProfitMargin), g.Key)
			}
		})
	}
}

func TestAggregate_Empty(t *testing.T) {
	for _, d := range domain.Dimensions {
		t.Run(string(d), func(t *testing.T) {
			got, err := Aggregate(nil, d)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestAggregate_UnknownDimension(t *testing.T) {
	_, err := Aggregate(nil, domain.Dimension("region"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region")
}

func TestAggregate_ReductionLaw(t *testing.T) {
	records := []domain.SalesRecord{
		{Product: "Basil", Customer: "A", SalesRep: "X", TotalRevenue: 12.5, TotalProfit: 1.25},
		{Product: "Carrot", Customer: "B", SalesRep: "Y", TotalRevenue: 40, TotalProfit: 8},
		{Product: "Kale", Customer: "A", SalesRep: "X", TotalRevenue: 7.75, TotalProfit: -0.5},
		{Product: "Basil", Customer: "C", SalesRep: "Y", TotalRevenue: 100, TotalProfit: 30},
		{Product: "Pepper", Customer: "B", SalesRep: "Z", TotalRevenue: 0, TotalProfit: 0},
	}

	var wantSales, wantProfit float64
	for _, r := range records {
		wantSales += r.TotalRevenue
		wantProfit += r.TotalProfit
	}

	for _, d := range domain.Dimensions {
		t.Run(string(d), func(t *testing.T) {
			groups, err := Aggregate(records, d)
			require.NoError(t, err)

			keyFor, err := keyFunc(d)
			require.NoError(t, err)

			var sales, profit float64
			for _, g := range groups {
				var gs, gp float64
				for _, r := range records {
					if keyFor(r) == g.Key {
						gs += r.TotalRevenue
						gp += r.TotalProfit
					}
				}
				assert.InDelta(t, gs, g.TotalSales, 1e-9, "group %s", g.Key)
				assert.InDelta(t, gp, g.TotalProfit, 1e-9, "group %s", g.Key)
				sales += g.TotalSales
				profit += g.TotalProfit
			}
			assert.InDelta(t, wantSales, sales, 1e-9)
			assert.InDelta(t, wantProfit, profit, 1e-9)
		})
	}
}

func TestMargin(t *testing.T) {
	assert.Equal(t, 0.0, Margin(10, 0))
	assert.InDelta(t, 25.0, Margin(25, 100), 1e-9)
	assert.InDelta(t, -10.0, Margin(-10, 100), 1e-9)
}
