package models

import (
	"strings"
	"time"
)

// IngredientRecord represents one line of the restaurant inventory
type IngredientRecord struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Key returns the case-normalized identity of the ingredient
func (r IngredientRecord) Key() string {
	return NormalizeName(r.Name)
}

// NormalizeName lowercases and collapses whitespace so that inventory
// identity is stable across files
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// ExpiringItem is an inventory record flagged as about to spoil. The
// quantity is the portion leaving the fresh inventory, not the original
// stock level.
type ExpiringItem struct {
	IngredientRecord
	DaysToExpire int `json:"days_to_expire"`
}

// ExpiryHistoryEntry is one appended batch in the rolling expiry history.
// Entries are never mutated after append.
type ExpiryHistoryEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Batch     []ExpiringItem `json:"batch"`
}

// InventoryUnit represents the unit of measurement for an inventory item
type InventoryUnit string

const (
	// Weight units
	UnitGram     InventoryUnit = "g"
	UnitKilogram InventoryUnit = "kg"

	// Volume units
	UnitMilliliter InventoryUnit = "ml"
	UnitLiter      InventoryUnit = "l"

	// Count units
	UnitPiece InventoryUnit = "pc"
	UnitBunch InventoryUnit = "bunch"
)
