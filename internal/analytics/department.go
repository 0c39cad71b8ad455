package analytics

import "strings"

// OtherDepartment collects products no keyword matches.
const OtherDepartment = "Other"

// departmentRule maps product-name keywords to a department.
type departmentRule struct {
	department string
	keywords   []string
}

// departmentRules are checked in order; the first match wins.
var departmentRules = []departmentRule{
	{department: "Herbs", keywords: []string{"basil"}},
	{department: "Roots", keywords: []string{"carrot"}},
	{department: "Vegetables", keywords: []string{"pepper"}},
	{department: "Leafy Greens", keywords: []string{"kale", "chard"}},
}

// DepartmentOf classifies a product by case-insensitive keyword match.
func DepartmentOf(product string) string {
	name := strings.ToLower(product)
	for _, rule := range departmentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.department
			}
		}
	}
	return OtherDepartment
}
