package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PriceKind records which JSON kind a price field had when it was decoded
type PriceKind int

const (
	PriceAbsent PriceKind = iota // Key not present
	PriceNull                    // JSON null
	PriceNumber                  // JSON number (extraction path)
	PriceText                    // JSON string such as "$39" or "Custom" (query-answer path)
	PriceOther                   // Any other JSON kind, kept raw
)

func (k PriceKind) String() string {
	switch k {
	case PriceNull:
		return "null"
	case PriceNumber:
		return "number"
	case PriceText:
		return "text"
	case PriceOther:
		return "other"
	default:
		return "absent"
	}
}

// Price is the canonical representation of a tier price.
//
// The extraction path produces bare numbers while the query-answer path produces
// currency-formatted strings. Both are kept as observed; conversion happens only
// through Numeric (merge comparisons) and DigitSource (evaluation).
// Decoded numbers keep their literal in raw so digits beyond float64 precision survive.
type Price struct {
	Kind   PriceKind
	Number float64
	Text   string
	raw    json.RawMessage
}

// NumberPrice returns a numeric price
func NumberPrice(v float64) Price {
	return Price{Kind: PriceNumber, Number: v}
}

// TextPrice returns a textual price
func TextPrice(s string) Price {
	return Price{Kind: PriceText, Text: s}
}

// NullPrice returns an explicit null price
func NullPrice() Price {
	return Price{Kind: PriceNull}
}

// numberLiteral returns a numeric price that remembers its source literal
func numberLiteral(v float64, literal string) Price {
	return Price{Kind: PriceNumber, Number: v, raw: json.RawMessage(literal)}
}

// Numeric returns the price as a number when it is a valid, finite JSON number.
// Text prices are never numeric, even when they look like one.
func (p Price) Numeric() (float64, bool) {
	if p.Kind != PriceNumber || math.IsNaN(p.Number) || math.IsInf(p.Number, 0) {
		return 0, false
	}
	return p.Number, true
}

// DigitSource returns the text scanned for a digit run during evaluation.
// An absent price reads as "0", a null price has no digits.
func (p Price) DigitSource() string {
	switch p.Kind {
	case PriceAbsent:
		return "0"
	case PriceNull:
		return ""
	case PriceNumber:
		if len(p.raw) > 0 && !bytes.ContainsAny(p.raw, "eE") {
			return string(p.raw)
		}
		return strconv.FormatFloat(p.Number, 'f', -1, 64)
	case PriceText:
		return p.Text
	default:
		return string(p.raw)
	}
}

// Display formats the price for humans
func (p Price) Display() string {
	switch p.Kind {
	case PriceAbsent, PriceNull:
		return "N/A"
	case PriceNumber:
		return formatDollars(p.Number)
	case PriceText:
		if p.Text == "Custom" {
			return p.Text
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(p.Text), 64); err == nil {
			return formatDollars(v)
		}
		return p.Text
	default:
		return string(p.raw)
	}
}

// IsZero reports whether the price was absent; used by omitempty-style marshaling
func (p Price) IsZero() bool {
	return p.Kind == PriceAbsent
}

// UnmarshalJSON records the JSON kind. It is called for null as well.
func (p *Price) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*p = Price{}
		return nil
	}

	switch trimmed[0] {
	case 'n':
		*p = NullPrice()
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*p = TextPrice(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var v float64
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return err
		}
		*p = numberLiteral(v, string(trimmed))
	default:
		*p = Price{Kind: PriceOther, raw: append(json.RawMessage(nil), trimmed...)}
	}
	return nil
}

// MarshalJSON writes the price back in its observed kind
func (p Price) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PriceAbsent, PriceNull:
		return []byte("null"), nil
	case PriceNumber:
		if _, ok := p.Numeric(); !ok {
			return []byte("null"), nil
		}
		if len(p.raw) > 0 {
			return p.raw, nil
		}
		return json.Marshal(p.Number)
	case PriceText:
		return json.Marshal(p.Text)
	default:
		if len(p.raw) == 0 {
			return []byte("null"), nil
		}
		return p.raw, nil
	}
}

// UnmarshalYAML accepts scalars from hand-authored expected results
func (p *Price) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*p = NullPrice()
	case string:
		*p = TextPrice(t)
	case int:
		*p = numberLiteral(float64(t), strconv.Itoa(t))
	case uint64:
		*p = numberLiteral(float64(t), strconv.FormatUint(t, 10))
	case float64:
		*p = NumberPrice(t)
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("unsupported price value %v", t)
		}
		*p = Price{Kind: PriceOther, raw: raw}
	}
	return nil
}

// MarshalYAML mirrors MarshalJSON for config/expected output
func (p Price) MarshalYAML() (interface{}, error) {
	switch p.Kind {
	case PriceNumber:
		return p.Number, nil
	case PriceText:
		return p.Text, nil
	case PriceOther:
		var v interface{}
		if err := json.Unmarshal(p.raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, nil
	}
}

// formatDollars renders v as $1,234.50
func formatDollars(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := "$" + b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
