// Package cache holds recently read blobs in memory.
//
// Entries are whole, immutable byte slices keyed by blob name. The cache
// is bounded by its own byte capacity and, when a resource.Controller is
// attached, by the controller's memory budget.
package cache
