package model

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes an absent JSON member from an explicit null.
//
//	absent          -> Set == false
//	"field": null   -> Set == true, Valid == false
//	"field": value  -> Set == true, Valid == true
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: v}
}

// Null returns a present, explicitly null Optional.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON is only called for members present in the document.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Valid = false
		var zero T
		o.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// MarshalJSON renders null unless a value is present.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Apply writes the patch into dst: a value replaces it, null restores def, absent leaves it.
// It reports whether dst was touched.
func (o Optional[T]) Apply(dst *T, def T) bool {
	if !o.Set {
		return false
	}
	if o.Valid {
		*dst = o.Value
	} else {
		*dst = def
	}
	return true
}
