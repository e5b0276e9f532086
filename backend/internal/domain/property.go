// backend/internal/domain/property.go
package domain

// Property is one normalized search-result listing.
//
// Price holds whatever the page provided: a string such as "$450,000" or a json.Number,
// or the placeholder text when the listing has no price.
type Property struct {
	Name         string  `json:"name"`
	Price        any     `json:"price"`
	PropertyType string  `json:"propertyType"`
	DetailURL    *string `json:"detailUrl"`
}
