package store

import "strings"

// Category is the closed set of product classifications. Unrecognized
// literals are rejected, never coerced.
type Category string

const (
	CategoryCloths      Category = "CLOTHS"
	CategoryFood        Category = "FOOD"
	CategoryHousewares  Category = "HOUSEWARES"
	CategoryHomeGoods   Category = "HOME_GOODS"
	CategoryElectronics Category = "ELECTRONICS"
	CategoryBooks       Category = "BOOKS"
	CategoryFurniture   Category = "FURNITURE"
	CategoryTools       Category = "TOOLS"
	CategoryAutomotive  Category = "AUTOMOTIVE"
	CategoryUnknown     Category = "UNKNOWN"
)

// Categories returns all valid category values.
func Categories() []Category {
	return []Category{
		CategoryCloths,
		CategoryFood,
		CategoryHousewares,
		CategoryHomeGoods,
		CategoryElectronics,
		CategoryBooks,
		CategoryFurniture,
		CategoryTools,
		CategoryAutomotive,
		CategoryUnknown,
	}
}

// IsValid reports whether c is a member of the category enumeration.
func (c Category) IsValid() bool {
	for _, v := range Categories() {
		if c == v {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// Display returns the title-case display form of the category name,
// e.g. CLOTHS -> "Cloths", HOME_GOODS -> "Home_Goods".
func (c Category) Display() string {
	var b strings.Builder
	b.Grow(len(c))
	startOfWord := true
	for _, r := range strings.ToLower(string(c)) {
		if startOfWord && r >= 'a' && r <= 'z' {
			r = r - 'a' + 'A'
		}
		startOfWord = r == '_'
		b.WriteRune(r)
	}
	return b.String()
}
