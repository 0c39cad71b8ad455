package dataprocessing

import (
	"fmt"
	"strings"
)

// column identifies a SalesRecord field a header can map to.
type column int

const (
	colProduct column = iota
	colCustomer
	colSalesRep
	colDate
	colQuantity
	colUnit
	colCostPerUnit
	colPricePerUnit
	colTotalRevenue
	colTotalProfit
	colProfitPercent
	colSalesOrder
	colInvoiceNumber
	colPaymentStatus
	colRequestDate
)

// headerAliases maps normalized header text to a field. The first spelling of
// each list is the canonical export header.
var headerAliases = map[column][]string{
	colProduct:       {"product", "product name", "item"},
	colCustomer:      {"customer", "customer name"},
	colSalesRep:      {"sales rep", "sales representative", "salesperson", "rep"},
	colDate:          {"date", "sale date", "transaction date", "invoice date"},
	colQuantity:      {"quantity", "qty"},
	colUnit:          {"unit", "uom"},
	colCostPerUnit:   {"cost per unit", "unit cost"},
	colPricePerUnit:  {"price per unit", "unit price"},
	colTotalRevenue:  {"total revenue", "revenue", "total sales"},
	colTotalProfit:   {"total profit $", "total profit", "profit"},
	colProfitPercent: {"total profit %", "profit %", "margin %"},
	colSalesOrder:    {"sales order", "sales order #", "so #"},
	colInvoiceNumber: {"invoice number", "invoice #", "invoice"},
	colPaymentStatus: {"invoice payment status", "payment status"},
	colRequestDate:   {"reqs. date", "reqs date", "request date", "due date"},
}

var requiredColumns = []column{colProduct, colTotalRevenue, colTotalProfit}

var aliasIndex = func() map[string]column {
	idx := make(map[string]column)
	for col, names := range headerAliases {
		for _, name := range names {
			idx[name] = col
		}
	}
	return idx
}()

// columnMap holds the position of each recognized column in a source.
type columnMap struct {
	index map[column]int
	width int
}

// normalizeHeader lowercases and collapses whitespace so "Total  Profit $ "
// and "total profit $" match.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// mapHeader resolves header cells to fields. Unknown headers are ignored and
// the first occurrence of a duplicate wins.
func mapHeader(header []string) (*columnMap, error) {
	cm := &columnMap{index: make(map[column]int), width: len(header)}
	for i, h := range header {
		col, ok := aliasIndex[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, seen := cm.index[col]; !seen {
			cm.index[col] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := cm.index[col]; !ok {
			missing = append(missing, headerAliases[col][0])
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	// Without a transaction date column the request date stands in.
	if _, ok := cm.index[colDate]; !ok {
		if i, ok := cm.index[colRequestDate]; ok {
			cm.index[colDate] = i
		}
	}
	return cm, nil
}

// get returns the trimmed cell for col, or "" when the column is absent.
func (cm *columnMap) get(row []string, col column) string {
	i, ok := cm.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
