package schema

import (
	"testing"
	"time"
)

// TestValidate_Success verifies that a well-formed schema validates and
// normalizes its allowable_values into typed bounds.
func TestValidate_Success(t *testing.T) {
	s := Schema{
		{Name: "color", DataType: TypeCategory, AllowableValues: []interface{}{"red", "green", "blue"}},
		{Name: "price", DataType: TypeFloat, AllowableValues: []interface{}{float64(1.5), float64(9.5)}},
		{Name: "qty", DataType: TypeInteger, AllowableValues: []interface{}{int64(0), int64(100)}},
		{Name: "active", DataType: TypeBool},
		{Name: "shipped", DataType: TypeDate, AllowableValues: []interface{}{"2024-01-01", "2024-12-31"}},
		{Name: "seen", DataType: TypeDatetime, AllowableValues: []interface{}{"2024-01-01 00:00:00", "2024-01-02 12:30:00"}},
	}

	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	if got := s[0].Categories(); len(got) != 3 || got[0] != "red" {
		t.Errorf("expected normalized categories [red green blue], got %v", got)
	}

	min, max := s[1].FloatBounds()
	if min != 1.5 || max != 9.5 {
		t.Errorf("expected float bounds [1.5, 9.5], got [%v, %v]", min, max)
	}

	imin, imax := s[2].IntBounds()
	if imin != 0 || imax != 100 {
		t.Errorf("expected int bounds [0, 100], got [%d, %d]", imin, imax)
	}

	tmin, tmax := s[4].TimeBounds()
	if tmin.Year() != 2024 || tmax.Month() != time.December {
		t.Errorf("expected date bounds within 2024, got [%v, %v]", tmin, tmax)
	}
}

// TestValidate_Empty verifies that an empty schema is rejected.
func TestValidate_Empty(t *testing.T) {
	var s Schema
	if err := s.Validate(); err == nil {
		t.Error("expected error for empty schema")
	}
}

// TestValidate_DuplicateNames verifies that duplicate field names are rejected.
func TestValidate_DuplicateNames(t *testing.T) {
	s := Schema{
		{Name: "flag", DataType: TypeBool},
		{Name: "flag", DataType: TypeBool},
	}

	if err := s.Validate(); err == nil {
		t.Error("expected error for duplicate field name")
	}
}

// TestValidate_EmptyName verifies that an unnamed field is rejected.
func TestValidate_EmptyName(t *testing.T) {
	s := Schema{
		{Name: "", DataType: TypeBool},
	}

	if err := s.Validate(); err == nil {
		t.Error("expected error for empty field name")
	}
}

// TestValidate_ProportionNullsRange verifies the [0, 1] bound on proportion_nulls.
func TestValidate_ProportionNullsRange(t *testing.T) {
	cases := []struct {
		proportion float64
		valid      bool
	}{
		{0, true},
		{0.5, true},
		{1, true},
		{-0.1, false},
		{1.1, false},
	}

	for _, tc := range cases {
		s := Schema{
			{Name: "flag", DataType: TypeBool, ProportionNulls: tc.proportion},
		}
		err := s.Validate()
		if tc.valid && err != nil {
			t.Errorf("proportion_nulls %v: unexpected error: %v", tc.proportion, err)
		}
		if !tc.valid && err == nil {
			t.Errorf("proportion_nulls %v: expected error", tc.proportion)
		}
	}
}

// TestValidate_CategoryRequiresValues verifies that a category field without
// allowable_values is rejected.
func TestValidate_CategoryRequiresValues(t *testing.T) {
	s := Schema{
		{Name: "color", DataType: TypeCategory},
	}

	if err := s.Validate(); err == nil {
		t.Error("expected error for category without allowable_values")
	}
}

// TestValidate_CategoryNonString verifies that non-string category values are rejected.
func TestValidate_CategoryNonString(t *testing.T) {
	s := Schema{
		{Name: "color", DataType: TypeCategory, AllowableValues: []interface{}{"red", int64(3)}},
	}

	if err := s.Validate(); err == nil {
		t.Error("expected error for non-string category value")
	}
}

// TestValidate_NumericPairShape verifies that ranged types demand exactly
// [min, max] with min <= max.
func TestValidate_NumericPairShape(t *testing.T) {
	tooFew := Schema{
		{Name: "price", DataType: TypeFloat, AllowableValues: []interface{}{float64(1)}},
	}
	if err := tooFew.Validate(); err == nil {
		t.Error("expected error for one-element range")
	}

	inverted := Schema{
		{Name: "qty", DataType: TypeInteger, AllowableValues: []interface{}{int64(10), int64(1)}},
	}
	if err := inverted.Validate(); err == nil {
		t.Error("expected error for min > max")
	}
}

// TestValidate_IntegerRejectsFraction verifies that fractional bounds on an
// integer field are rejected.
func TestValidate_IntegerRejectsFraction(t *testing.T) {
	s := Schema{
		{Name: "qty", DataType: TypeInteger, AllowableValues: []interface{}{float64(1.5), float64(10)}},
	}

	if err := s.Validate(); err == nil {
		t.Error("expected error for fractional integer bound")
	}
}

// TestValidate_IntegerAcceptsWholeFloat verifies that a whole-number float
// decoding is coerced to an integer bound.
func TestValidate_IntegerAcceptsWholeFloat(t *testing.T) {
	s := Schema{
		{Name: "qty", DataType: TypeInteger, AllowableValues: []interface{}{float64(1), int64(10)}},
	}

	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	min, max := s[0].IntBounds()
	if min != 1 || max != 10 {
		t.Errorf("expected int bounds [1, 10], got [%d, %d]", min, max)
	}
}

// TestValidate_BoolRejectsValues verifies that bool fields must not carry
// allowable_values.
func TestValidate_BoolRejectsValues(t *testing.T) {
	s := Schema{
		{Name: "flag", DataType: TypeBool, AllowableValues: []interface{}{"true"}},
	}

	if err := s.Validate(); err == nil {
		t.Error("expected error for bool with allowable_values")
	}
}

// TestValidate_DateLayout verifies that date bounds must parse in the date layout.
func TestValidate_DateLayout(t *testing.T) {
	s := Schema{
		{Name: "shipped", DataType: TypeDate, AllowableValues: []interface{}{"01/02/2024", "2024-12-31"}},
	}

	if err := s.Validate(); err == nil {
		t.Error("expected error for malformed date bound")
	}
}

// TestValidate_DatetimeInverted verifies that inverted datetime bounds are rejected.
func TestValidate_DatetimeInverted(t *testing.T) {
	s := Schema{
		{Name: "seen", DataType: TypeDatetime, AllowableValues: []interface{}{"2024-01-02 00:00:00", "2024-01-01 00:00:00"}},
	}

	if err := s.Validate(); err == nil {
		t.Error("expected error for min after max")
	}
}

// TestValidate_UnknownType verifies that an unsupported data_type is rejected.
func TestValidate_UnknownType(t *testing.T) {
	s := Schema{
		{Name: "blob", DataType: "binary"},
	}

	if err := s.Validate(); err == nil {
		t.Error("expected error for unsupported data_type")
	}
}
