package zillow

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ps-vitor/zillow-scraper/backend/internal/domain"
)

// Placeholders for fields a listing does not carry.
const (
	AddressUnavailable = "Dirección no disponible"
	PriceUnavailable   = "Precio no disponible"
	UnknownType        = "Tipo desconocido"
)

const nameSeparator = " - "

// rawListing is one untyped entry of the results array. Every field is optional.
type rawListing map[string]any

func (r rawListing) homeInfo(key string) any {
	return lookup(map[string]any(r), "hdpData", "homeInfo", key)
}

func (r rawListing) address() any {
	if v, ok := firstTruthy(r["address"], r["addressStreet"], r.homeInfo("streetAddress")); ok {
		return v
	}
	return AddressUnavailable
}

func (r rawListing) price() any {
	if v, ok := firstTruthy(r["price"], r.homeInfo("price")); ok {
		if n, isNum := v.(json.Number); isNum {
			return canonicalNumber(n)
		}
		return v
	}
	return PriceUnavailable
}

func (r rawListing) propertyType() any {
	if v, ok := firstTruthy(r.homeInfo("homeType"), r["statusType"]); ok {
		return v
	}
	return UnknownType
}

func (e *Extractor) normalize(r rawListing) (domain.Property, error) {
	address := textOf(r.address())

	parts := []string{address}
	if area := r["area"]; truthy(area) {
		parts = append(parts, textOf(area)+" sqft")
	}

	name := strings.Join(parts, nameSeparator)
	if name == "" {
		name = address
	}

	prop := domain.Property{
		Name:         name,
		Price:        r.price(),
		PropertyType: textOf(r.propertyType()),
	}

	if link := r["detailUrl"]; truthy(link) {
		resolved, err := e.baseURL.Parse(textOf(link))
		if err != nil {
			return domain.Property{}, fmt.Errorf("%w: detailUrl %q: %v", ErrMalformedPayload, textOf(link), err)
		}
		s := resolved.String()
		prop.DetailURL = &s
	}

	return prop, nil
}

// lookup walks nested objects; it returns nil as soon as a step is missing or not an object.
func lookup(v any, path ...string) any {
	for _, key := range path {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = obj[key]
	}
	return v
}

func firstTruthy(values ...any) (any, bool) {
	for _, v := range values {
		if truthy(v) {
			return v, true
		}
	}
	return nil, false
}

// truthy treats null, false, "" and numeric zero as absent, the way the page's own scripts do.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return true
		}
		return f != 0 && !math.IsNaN(f)
	case float64:
		return t != 0 && !math.IsNaN(t)
	default:
		return true
	}
}

func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return canonicalNumber(t).String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// canonicalNumber rewrites a numeric literal the way the page scripts would print it:
// 450000.0 becomes 450000 and 1.2e3 becomes 1200.
func canonicalNumber(n json.Number) json.Number {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return n
	}
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64))
}
