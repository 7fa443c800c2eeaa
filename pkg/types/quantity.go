package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// QuantityScale is the number of fractional digits persisted for meter and tank volumes.
const QuantityScale = 4

// MaxQuantity is the largest value a numeric(18,4) column holds.
var MaxQuantity = Quantity{Decimal: decimal.RequireFromString("99999999999999.9999")}

var plainDecimalRe = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)

var (
	// ErrNegativeQuantity is returned when a parsed quantity is below zero.
	ErrNegativeQuantity = errors.New("quantity must not be negative")
	// ErrQuantityPrecision is returned when a value carries more than QuantityScale fractional digits.
	ErrQuantityPrecision = fmt.Errorf("quantity supports at most %d decimal places", QuantityScale)
	// ErrQuantityOverflow is returned when a value exceeds MaxQuantity.
	ErrQuantityOverflow = errors.New("quantity must not exceed 99999999999999.9999")
	// ErrQuantitySyntax is returned for anything but plain decimal notation, such as exponents.
	ErrQuantitySyntax = errors.New("quantity must be a plain decimal number")
)

// Quantity is a fixed-point volume backed by shopspring/decimal. It is stored as
// numeric(18,4) on Postgres and as text on SQLite so no binary float ever holds it.
type Quantity struct {
	decimal.Decimal
}

// ZeroQuantity returns the zero volume.
func ZeroQuantity() Quantity {
	return Quantity{Decimal: decimal.Zero}
}

// NewQuantity wraps a decimal value.
func NewQuantity(d decimal.Decimal) Quantity {
	return Quantity{Decimal: d}
}

// MustQuantity parses a literal and panics on failure. Intended for fixtures and constants.
func MustQuantity(value string) Quantity {
	q, err := ParseQuantity(value)
	if err != nil {
		panic(err)
	}
	return q
}

// ParseQuantity parses a non-negative plain decimal string with at most
// QuantityScale fractional digits that fits numeric(18,4).
func ParseQuantity(value string) (Quantity, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return Quantity{}, errors.New("quantity is required")
	}
	if !plainDecimalRe.MatchString(raw) {
		return Quantity{}, fmt.Errorf("parse quantity %q: %w", raw, ErrQuantitySyntax)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return Quantity{}, fmt.Errorf("parse quantity %q: %w", raw, err)
	}
	if d.IsNegative() {
		return Quantity{}, ErrNegativeQuantity
	}
	if d.Exponent() < -QuantityScale && !d.Equal(d.Round(QuantityScale)) {
		return Quantity{}, ErrQuantityPrecision
	}
	if d.GreaterThan(MaxQuantity.Decimal) {
		return Quantity{}, ErrQuantityOverflow
	}
	return Quantity{Decimal: d.Round(QuantityScale)}, nil
}

// Add returns q + other.
func (q Quantity) Add(other Quantity) Quantity {
	return Quantity{Decimal: q.Decimal.Add(other.Decimal)}
}

// Sub returns q - other.
func (q Quantity) Sub(other Quantity) Quantity {
	return Quantity{Decimal: q.Decimal.Sub(other.Decimal)}
}

// Neg returns -q.
func (q Quantity) Neg() Quantity {
	return Quantity{Decimal: q.Decimal.Neg()}
}

// Equal compares the numeric values, ignoring representation scale.
func (q Quantity) Equal(other Quantity) bool {
	return q.Decimal.Equal(other.Decimal)
}

// LessThan reports whether q < other.
func (q Quantity) LessThan(other Quantity) bool {
	return q.Decimal.LessThan(other.Decimal)
}

// String renders the value with exactly QuantityScale fractional digits.
func (q Quantity) String() string {
	return q.Decimal.StringFixed(QuantityScale)
}

// Value implements driver.Valuer.
func (q Quantity) Value() (driver.Value, error) {
	return q.String(), nil
}

// Scan implements sql.Scanner.
func (q *Quantity) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		q.Decimal = decimal.Zero
		return nil
	case string:
		return q.scanString(v)
	case []byte:
		return q.scanString(string(v))
	case int64:
		q.Decimal = decimal.NewFromInt(v)
		return nil
	case float64:
		q.Decimal = decimal.NewFromFloat(v).Round(QuantityScale)
		return nil
	default:
		return fmt.Errorf("quantity: unsupported scan type %T", value)
	}
}

func (q *Quantity) scanString(raw string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("quantity: %w", err)
	}
	q.Decimal = d
	return nil
}

// GormDBDataType picks an exact column type per dialect.
func (Quantity) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db != nil && db.Dialector != nil && db.Dialector.Name() == "sqlite" {
		return "text"
	}
	return "numeric(18,4)"
}

// MarshalJSON renders the fixed-scale string form.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.String())
}

// UnmarshalJSON accepts both quoted and bare numeric literals.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		q.Decimal = decimal.Zero
		return nil
	}
	return q.scanString(raw)
}
