package types

// Variant is one weight/style pair of a family.
type Variant struct {
	// Numeric weight, 100 through 900.
	// example: 700
	Weight int `json:"weight" example:"700"`
	// Slant: normal or italic.
	// example: italic
	Style string `json:"style" example:"italic"`
}

// Family is a catalog entry as exposed over HTTP.
type Family struct {
	// Family name, exactly as listed by the catalog.
	// example: Open Sans
	Family string `json:"family" example:"Open Sans"`
	// Catalog category.
	// example: sans-serif
	Category string `json:"category,omitempty" example:"sans-serif"`
	// Usable variants discovered from the catalog tokens.
	Variants []Variant `json:"variants"`
}
