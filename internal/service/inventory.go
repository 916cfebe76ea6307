package service

import "github.com/obsidianatelier/storefront/internal/models"

// Stock labels shown next to a variant. Presentation only; nothing in the
// data model changes at these thresholds.
const (
	StockOut = "out_of_stock"
	StockLow = "low_stock"
	StockIn  = "in_stock"
)

func StockLabel(stock int) string {
	switch {
	case stock <= 0:
		return StockOut
	case stock < 5:
		return StockLow
	default:
		return StockIn
	}
}

// HasColorOptions reports whether any variant of the product carries a
// color. When none do, color selection is skipped entirely.
func HasColorOptions(variants []models.Variant) bool {
	for _, v := range variants {
		if v.Color != "" {
			return true
		}
	}
	return false
}

// AvailableColors returns the distinct colors among in-stock variants, in
// first-occurrence order. Colors whose every variant is out of stock are
// excluded.
func AvailableColors(variants []models.Variant) []string {
	seen := make(map[string]struct{})
	var colors []string
	for _, v := range variants {
		if v.Stock <= 0 || v.Color == "" {
			continue
		}
		if _, ok := seen[v.Color]; ok {
			continue
		}
		seen[v.Color] = struct{}{}
		colors = append(colors, v.Color)
	}
	return colors
}

// AvailableSizes returns the distinct sizes among in-stock variants matching
// the selected color, in first-occurrence order. An empty color matches all
// variants.
func AvailableSizes(variants []models.Variant, color string) []string {
	seen := make(map[string]struct{})
	var sizes []string
	for _, v := range variants {
		if v.Stock <= 0 {
			continue
		}
		if color != "" && v.Color != color {
			continue
		}
		if _, ok := seen[v.Size]; ok {
			continue
		}
		seen[v.Size] = struct{}{}
		sizes = append(sizes, v.Size)
	}
	return sizes
}

// NormalizeSelection clears a selected size that is no longer valid for the
// selected color, so a selection never points at an unavailable combination.
func NormalizeSelection(variants []models.Variant, color, size string) (string, string) {
	if size == "" {
		return color, size
	}
	for _, s := range AvailableSizes(variants, color) {
		if s == size {
			return color, size
		}
	}
	return color, ""
}
