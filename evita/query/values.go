package query

import "fmt"

type OrderDirection int

const (
	Asc OrderDirection = iota
	Desc
)

func (d OrderDirection) String() string {
	switch d {
	case Asc:
		return "ASC"
	case Desc:
		return "DESC"
	default:
		return fmt.Sprintf("OrderDirection(%d)", int(d))
	}
}

// MarshalText stores directions by name so recorded parameters keep their meaning.
func (d OrderDirection) MarshalText() ([]byte, error) {
	if d != Asc && d != Desc {
		return nil, fmt.Errorf("query: unknown order direction %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *OrderDirection) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ASC":
		*d = Asc
	case "DESC":
		*d = Desc
	default:
		return fmt.Errorf("query: unknown order direction %q", text)
	}
	return nil
}

// PriceContentMode controls which prices of an entity are fetched.
type PriceContentMode int

const (
	PriceModeNone PriceContentMode = iota
	PriceModeRespectingFilter
	PriceModeAll
)

func (m PriceContentMode) String() string {
	switch m {
	case PriceModeNone:
		return "NONE"
	case PriceModeRespectingFilter:
		return "RESPECTING_FILTER"
	case PriceModeAll:
		return "ALL"
	default:
		return fmt.Sprintf("PriceContentMode(%d)", int(m))
	}
}

func (m PriceContentMode) MarshalText() ([]byte, error) {
	if m < PriceModeNone || m > PriceModeAll {
		return nil, fmt.Errorf("query: unknown price content mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *PriceContentMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "NONE":
		*m = PriceModeNone
	case "RESPECTING_FILTER":
		*m = PriceModeRespectingFilter
	case "ALL":
		*m = PriceModeAll
	default:
		return fmt.Errorf("query: unknown price content mode %q", text)
	}
	return nil
}

// OpenBound fills the missing side of a range so the other bound keeps its position.
type OpenBound struct{}

// Unbounded is the only OpenBound value.
var Unbounded = OpenBound{}

func (OpenBound) String() string {
	return "null"
}

func (OpenBound) MarshalText() ([]byte, error) {
	return []byte("null"), nil
}
