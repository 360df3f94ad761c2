package types

import "strings"

// Expansions in release order. An item's expansion is always one of these.
const (
	ExpansionARealmReborn   = "a realm reborn"
	ExpansionHeavensward    = "heavensward"
	ExpansionStormblood     = "stormblood"
	ExpansionShadowbringers = "shadowbringers"
	ExpansionEndwalker      = "endwalker"
	ExpansionDawntrail      = "dawntrail"
)

// Expansions lists the expansion names in release order.
var Expansions = []string{
	ExpansionARealmReborn,
	ExpansionHeavensward,
	ExpansionStormblood,
	ExpansionShadowbringers,
	ExpansionEndwalker,
	ExpansionDawntrail,
}

// Item categories.
const (
	CategoryTrial = "trial"
	CategoryRaid  = "raid"
)

// Categories lists the item categories.
var Categories = []string{CategoryTrial, CategoryRaid}

// Item is a trackable collectible in the catalog.
type Item struct {
	ItemID    string `json:"item_id"`   // UUID v7, generated on creation.
	Name      string `json:"item_name"` // Unique, case-sensitive.
	Expansion string `json:"item_expansion"`
	Category  string `json:"item_category"`
}

// Validate checks the name, expansion, and category of an item. An empty
// category is accepted and means CategoryTrial.
func (i Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrInvalidName
	}
	if !IsValidExpansion(i.Expansion) {
		return ErrUnknownExpansion
	}
	if i.Category != "" && !IsValidCategory(i.Category) {
		return ErrInvalidCategory
	}
	return nil
}

// ItemFilter narrows catalog listings. Empty fields match everything.
type ItemFilter struct {
	Expansion string
	Category  string
}

// NeededItem is one row of the most-needed summary.
type NeededItem struct {
	Expansion   string `json:"item_expansion"`
	Name        string `json:"item_name"`
	NeededCount int    `json:"need_count"`
}

// IsValidExpansion reports whether name is a known expansion.
func IsValidExpansion(name string) bool {
	return ExpansionOrder(name) >= 0
}

// ExpansionOrder returns the release index of an expansion, or -1.
func ExpansionOrder(name string) int {
	for i, e := range Expansions {
		if e == name {
			return i
		}
	}
	return -1
}

// ExpansionTitle capitalizes each word of an expansion name for display.
func ExpansionTitle(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// IsValidCategory reports whether c is a known category.
func IsValidCategory(c string) bool {
	return c == CategoryTrial || c == CategoryRaid
}
