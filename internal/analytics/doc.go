// Package analytics derives every view of a sales pass from a merged record
// set.
//
// The functions here are pure: they never log, never mutate their input and
// never fail on arithmetic edge cases. A zero denominator yields a margin or
// change of 0. The only errors they return are an EmptyDatasetError from
// PeriodRange and an unknown-dimension error from Aggregate.
//
// Analyze ties the pieces together:
//
//	ApplyFilter -> ByDepartment, ByCustomer, ByProduct, ByRepresentative
//	            -> AlertRules.Evaluate, InsightRules.Evaluate
//	            -> Summarize, PeriodRange, SalesByWeekday
package analytics
