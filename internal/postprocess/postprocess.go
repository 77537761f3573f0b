// Package postprocess filters and sorts assembled records the same way for every endpoint.
package postprocess

import (
	"cmp"
	"slices"
)

type Sort string

const (
	SortActivity Sort = "activity"
	SortCreation Sort = "creation"
	SortVotes    Sort = "votes"
	// the following are only understood by the question listing, they select a tab
	// on the listing page and are not applied here.
	SortHot   Sort = "hot"
	SortWeek  Sort = "week"
	SortMonth Sort = "month"
)

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Field is a numeric record field that can be sorted or filtered on.
type Field int

const (
	FieldLastActivityDate Field = iota + 1
	FieldCreationDate
	FieldScore
)

// Field returns the record field a sort applies to, tab sorts have none.
func (s Sort) Field() (Field, bool) {
	switch s {
	case SortActivity:
		return FieldLastActivityDate, true
	case SortCreation:
		return FieldCreationDate, true
	case SortVotes:
		return FieldScore, true
	}
	return 0, false
}

// IsTab reports whether the sort selects a tab of the question listing.
func (s Sort) IsTab() bool {
	return s == SortHot || s == SortWeek || s == SortMonth
}

// Bounded reports whether min/max bounds apply to this sort.
func (s Sort) Bounded() bool {
	return s == SortVotes || s == SortCreation
}

// Sortable is implemented by records, ok is false when the record does not have the field.
type Sortable interface {
	SortValue(field Field) (value int64, ok bool)
}

type Config struct {
	Sort  Sort
	Order Order
	Min   *int64
	Max   *int64
}

func value[T Sortable](item T, field Field) int64 {
	v, ok := item.SortValue(field)
	if !ok {
		return 0
	}
	return v
}

// Apply filters items on [Min, Max] (votes and creation sorts only) and then stable sorts them
// on the sort's field, descending unless Order is asc. A record missing the field is treated as
// if the field were 0. The input slice is not modified.
func Apply[T Sortable](items []T, cfg Config) []T {
	field, ok := cfg.Sort.Field()
	if !ok {
		return items
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if cfg.Sort.Bounded() {
			v := value(item, field)
			if cfg.Min != nil && v < *cfg.Min {
				continue
			}
			if cfg.Max != nil && v > *cfg.Max {
				continue
			}
		}
		out = append(out, item)
	}

	slices.SortStableFunc(out, func(a, b T) int {
		if cfg.Order == OrderAsc {
			return cmp.Compare(value(a, field), value(b, field))
		}
		return cmp.Compare(value(b, field), value(a, field))
	})
	return out
}

// SortByKey stable sorts items on a string key, descending unless order is asc. The input
// slice is not modified.
func SortByKey[T any](items []T, key func(T) string, order Order) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		if order == OrderAsc {
			return cmp.Compare(key(a), key(b))
		}
		return cmp.Compare(key(b), key(a))
	})
	return out
}
