package schema

import (
	"fmt"
	"time"
)

// DataType identifies the kind of value a field emits
type DataType string

const (
	TypeCategory DataType = "category"
	TypeFloat    DataType = "float"
	TypeInteger  DataType = "integer"
	TypeBool     DataType = "bool"
	TypeDate     DataType = "date"
	TypeDatetime DataType = "datetime"
)

// Layouts for date and datetime allowable_values in configuration files
const (
	DateLayout     = "2006-01-02"
	DatetimeLayout = "2006-01-02 15:04:05"
)

// FieldSpec describes one named, typed field of a record.
//
// AllowableValues is type-dependent: a list of discrete strings for category,
// a [min, max] pair for float/integer/date/datetime, and absent for bool.
// ProportionNulls is the probability in [0, 1] that the field emits null
// instead of a value.
type FieldSpec struct {
	Name            string        `toml:"name"`
	DataType        DataType      `toml:"data_type"`
	AllowableValues []interface{} `toml:"allowable_values"`
	ProportionNulls float64       `toml:"proportion_nulls"`

	// Normalized bounds, populated by Validate
	categories []string
	floatMin   float64
	floatMax   float64
	intMin     int64
	intMax     int64
	timeMin    time.Time
	timeMax    time.Time
}

// Schema is an ordered sequence of field specs with unique names.
// Immutable after a successful Validate.
type Schema []FieldSpec

// Validate checks field uniqueness and per-field shape, and normalizes
// allowable_values into typed bounds. Must be called before the schema is
// handed to the synthesizer.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("schema must contain at least one field")
	}

	seen := make(map[string]bool, len(s))
	for i := range s {
		field := &s[i]
		if field.Name == "" {
			return fmt.Errorf("field %d: name must not be empty", i)
		}
		if seen[field.Name] {
			return fmt.Errorf("duplicate field name: %s", field.Name)
		}
		seen[field.Name] = true

		if err := field.validate(); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}

	return nil
}

// validate checks one field spec and fills its normalized bounds
func (f *FieldSpec) validate() error {
	if f.ProportionNulls < 0 || f.ProportionNulls > 1 {
		return fmt.Errorf("proportion_nulls must be in [0, 1], got %v", f.ProportionNulls)
	}

	switch f.DataType {
	case TypeCategory:
		if len(f.AllowableValues) == 0 {
			return fmt.Errorf("category requires a non-empty allowable_values list")
		}
		f.categories = make([]string, len(f.AllowableValues))
		for i, v := range f.AllowableValues {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("category allowable_values[%d] must be a string, got %T", i, v)
			}
			f.categories[i] = s
		}

	case TypeFloat:
		min, max, err := f.numericPair()
		if err != nil {
			return err
		}
		f.floatMin, f.floatMax = min, max

	case TypeInteger:
		min, max, err := f.integerPair()
		if err != nil {
			return err
		}
		f.intMin, f.intMax = min, max

	case TypeBool:
		if len(f.AllowableValues) != 0 {
			return fmt.Errorf("bool must not specify allowable_values")
		}

	case TypeDate:
		min, max, err := f.timePair(DateLayout)
		if err != nil {
			return err
		}
		f.timeMin, f.timeMax = min, max

	case TypeDatetime:
		min, max, err := f.timePair(DatetimeLayout)
		if err != nil {
			return err
		}
		f.timeMin, f.timeMax = min, max

	default:
		return fmt.Errorf("unsupported data_type: %s", f.DataType)
	}

	return nil
}

// Categories returns the discrete values for a validated category field
func (f *FieldSpec) Categories() []string {
	return f.categories
}

// FloatBounds returns the [min, max] range for a validated float field
func (f *FieldSpec) FloatBounds() (float64, float64) {
	return f.floatMin, f.floatMax
}

// IntBounds returns the inclusive [min, max] range for a validated integer field
func (f *FieldSpec) IntBounds() (int64, int64) {
	return f.intMin, f.intMax
}

// TimeBounds returns the [min, max] range for a validated date or datetime field
func (f *FieldSpec) TimeBounds() (time.Time, time.Time) {
	return f.timeMin, f.timeMax
}

func (f *FieldSpec) numericPair() (float64, float64, error) {
	if len(f.AllowableValues) != 2 {
		return 0, 0, fmt.Errorf("%s requires allowable_values of exactly [min, max], got %d values",
			f.DataType, len(f.AllowableValues))
	}

	min, err := asFloat(f.AllowableValues[0])
	if err != nil {
		return 0, 0, fmt.Errorf("allowable_values min: %w", err)
	}
	max, err := asFloat(f.AllowableValues[1])
	if err != nil {
		return 0, 0, fmt.Errorf("allowable_values max: %w", err)
	}
	if min > max {
		return 0, 0, fmt.Errorf("allowable_values min (%v) must not exceed max (%v)", min, max)
	}

	return min, max, nil
}

func (f *FieldSpec) integerPair() (int64, int64, error) {
	if len(f.AllowableValues) != 2 {
		return 0, 0, fmt.Errorf("%s requires allowable_values of exactly [min, max], got %d values",
			f.DataType, len(f.AllowableValues))
	}

	min, err := asInt(f.AllowableValues[0])
	if err != nil {
		return 0, 0, fmt.Errorf("allowable_values min: %w", err)
	}
	max, err := asInt(f.AllowableValues[1])
	if err != nil {
		return 0, 0, fmt.Errorf("allowable_values max: %w", err)
	}
	if min > max {
		return 0, 0, fmt.Errorf("allowable_values min (%d) must not exceed max (%d)", min, max)
	}

	return min, max, nil
}

func (f *FieldSpec) timePair(layout string) (time.Time, time.Time, error) {
	if len(f.AllowableValues) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf(
			"%s requires allowable_values of exactly [min, max], got %d values",
			f.DataType, len(f.AllowableValues))
	}

	parse := func(v interface{}) (time.Time, error) {
		s, ok := v.(string)
		if !ok {
			return time.Time{}, fmt.Errorf("expected a %q string, got %T", layout, v)
		}
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("expected a %q string: %w", layout, err)
		}
		return t, nil
	}

	min, err := parse(f.AllowableValues[0])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("allowable_values min: %w", err)
	}
	max, err := parse(f.AllowableValues[1])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("allowable_values max: %w", err)
	}
	if min.After(max) {
		return time.Time{}, time.Time{}, fmt.Errorf("allowable_values min (%v) must not be after max (%v)", min, max)
	}

	return min, max, nil
}

// asFloat coerces TOML/JSON numeric decodings to float64
func asFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

// asInt coerces TOML/JSON numeric decodings to int64, rejecting fractions
func asInt(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}
