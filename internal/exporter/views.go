package exporter

import (
	"fmt"
	"strings"

	"salespulse/pkg/contracts/domain"
)

// View names one tabular projection of an analysis result.
type View string

const (
	ViewRecords     View = "records"
	ViewDepartments View = "departments"
	ViewCustomers   View = "customers"
	ViewProducts    View = "products"
	ViewSalesReps   View = "reps"
	ViewAlerts      View = "alerts"
)

// Views lists every exportable view in workbook order.
var Views = []View{ViewRecords, ViewDepartments, ViewCustomers, ViewProducts, ViewSalesReps, ViewAlerts}

// ParseView accepts a view name case-insensitively. Empty means records.
func ParseView(s string) (View, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ViewRecords, nil
	}
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown export view %q", s)
}

// Table is a header plus string rows.
type Table struct {
	Headers []string
	Rows    [][]string
}

// TableOf projects one view of result into rows of text.
func TableOf(result *domain.AnalysisResult, view View) (Table, error) {
	switch view {
	case ViewRecords:
		return recordsTable(result.Records), nil
	case ViewDepartments:
		t := Table{Headers: []string{"Department", "Total Sales", "Total Profit", "Profit Margin %"}}
		for _, d := range result.Departments {
			t.Rows = append(t.Rows, []string{d.Department, formatAmount(d.TotalSales), formatAmount(d.TotalProfit), formatPercent(d.ProfitMargin)})
		}
		return t, nil
	case ViewCustomers:
		t := Table{Headers: []string{"Customer", "Total Sales", "Total Profit", "Profit Margin %", "Orders"}}
		for _, c := range result.Customers {
			t.Rows = append(t.Rows, []string{c.Customer, formatAmount(c.TotalSales), formatAmount(c.TotalProfit), formatPercent(c.ProfitMargin), formatInt(c.OrderCount)})
		}
		return t, nil
	case ViewProducts:
		t := Table{Headers: []string{"Product", "Total Sales", "Total Profit", "Profit Margin %", "Units Sold"}}
		for _, p := range result.Products {
			t.Rows = append(t.Rows, []string{p.Product, formatAmount(p.TotalSales), formatAmount(p.TotalProfit), formatPercent(p.ProfitMargin), formatQuantity(p.UnitsSold)})
		}
		return t, nil
	case ViewSalesReps:
		t := Table{Headers: []string{"Sales Rep", "Total Sales", "Total Profit", "Profit Margin %", "Customers", "Orders"}}
		for _, r := range result.SalesReps {
			t.Rows = append(t.Rows, []string{r.Name, formatAmount(r.TotalSales), formatAmount(r.TotalProfit), formatPercent(r.ProfitMargin), formatInt(r.CustomerCount), formatInt(r.OrderCount)})
		}
		return t, nil
	case ViewAlerts:
		t := Table{Headers: []string{"Type", "Message", "Details"}}
		for _, a := range result.Alerts {
			t.Rows = append(t.Rows, []string{string(a.Type), a.Message, a.Details})
		}
		return t, nil
	default:
		return Table{}, fmt.Errorf("unknown export view %q", view)
	}
}

func recordsTable(records []domain.SalesRecord) Table {
	t := Table{Headers: []string{
		"Date", "Product", "Customer", "Sales Rep", "Quantity", "Unit",
		"Cost Per Unit", "Price Per Unit", "Total Revenue", "Total Profit $", "Total Profit %",
		"Sales Order", "Invoice Number", "Invoice Payment Status", "Reqs. Date",
	}}
	for _, r := range records {
		percent := ""
		if r.ProfitPercent != nil {
			percent = formatPercent(*r.ProfitPercent)
		}
		t.Rows = append(t.Rows, []string{
			formatDate(r.Date),
			r.Product,
			r.Customer,
			r.SalesRep,
			formatQuantity(r.Quantity),
			r.Unit,
			formatAmount(r.CostPerUnit),
			formatAmount(r.PricePerUnit),
			formatAmount(r.TotalRevenue),
			formatAmount(r.TotalProfit),
			percent,
			r.SalesOrder,
			r.InvoiceNumber,
			string(r.PaymentStatus),
			formatDate(r.RequestDate),
		})
	}
	return t
}
