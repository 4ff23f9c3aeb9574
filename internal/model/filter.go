package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidFilter = errors.New("invalid filter")

// FilterField is a contact attribute that can be used in a listing filter.
type FilterField string

const (
	FieldName     FilterField = "name"
	FieldSurname  FilterField = "surname"
	FieldEmail    FilterField = "email"
	FieldPhone    FilterField = "phone"
	FieldBirthday FilterField = "birthday"
	FieldAddress  FilterField = "address"
)

var filterFields = map[FilterField]struct{}{
	FieldName:     {},
	FieldSurname:  {},
	FieldEmail:    {},
	FieldPhone:    {},
	FieldBirthday: {},
	FieldAddress:  {},
}

// Predicate is a single equality clause.
type Predicate struct {
	Field FilterField
	Value string
}

// ContactFilter is a conjunction of equality predicates. The zero value
// matches every contact.
type ContactFilter []Predicate

// ParseContactFilter parses "field::value|field::value" into a filter.
// An empty string yields an empty filter. Unknown fields and malformed
// clauses wrap ErrInvalidFilter. A repeated field keeps the last value.
func ParseContactFilter(raw string) (ContactFilter, error) {
	if raw == "" {
		return nil, nil
	}

	var filter ContactFilter
	index := make(map[FilterField]int)
	for _, clause := range strings.Split(raw, "|") {
		key, value, ok := strings.Cut(clause, "::")
		if !ok || strings.Contains(value, "::") {
			return nil, fmt.Errorf("%w: malformed clause %q", ErrInvalidFilter, clause)
		}
		field := FilterField(key)
		if _, known := filterFields[field]; !known {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, key)
		}
		if field == FieldBirthday {
			if _, err := ParseBirthday(value); err != nil || value == "" {
				return nil, fmt.Errorf("%w: birthday must be YYYY-MM-DD", ErrInvalidFilter)
			}
		}
		if i, seen := index[field]; seen {
			filter[i].Value = value
			continue
		}
		index[field] = len(filter)
		filter = append(filter, Predicate{Field: field, Value: value})
	}
	return filter, nil
}

// Map returns the filter as field → value.
func (f ContactFilter) Map() map[FilterField]string {
	m := make(map[FilterField]string, len(f))
	for _, p := range f {
		m[p.Field] = p.Value
	}
	return m
}
