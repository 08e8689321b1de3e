// Package catalog builds typed, deduplicated collections from the catalog API.
//
// Every list endpoint runs the same pipeline: fetch a page, extract its
// element array, build each element independently and append the ones that
// are not already present in the caller's accumulator. A malformed element is
// skipped and reported in Result.Skipped; only a transport or top-level decode
// failure fails the whole call.
package catalog

import (
	"context"
	"slices"
)

// Category is a top-level catalog category.
type Category struct {
	ID   string
	Name string
}

// Product is a catalog item as presented to users.
type Product struct {
	ID    string
	Title string
	// Price is the display price ("$ 1.234"), resolved at build time.
	Price     string
	Available int
	Sold      int
	Condition string
	Permalink string
	Thumbnail string
}

// Result is the outcome of one pipeline call.
type Result[T any] struct {
	// Items is a copy of the caller's accumulator extended with this page.
	// It never shares spare capacity with the accumulator.
	Items []T
	// Skipped lists the elements of the page that could not be built.
	Skipped []*ElementError
	// Duplicates counts built elements dropped because they were already present.
	Duplicates int
	// Next is the offset to request for the following page. It equals
	// len(Items): the server is not asked for a cursor.
	Next int
}

// DedupeFunc reports whether candidate is already present in acc.
type DedupeFunc[T any] func(candidate T, acc []T) bool

// DedupeByKey treats two entities as equal when their keys are equal.
func DedupeByKey[T any](key func(T) string) DedupeFunc[T] {
	return func(candidate T, acc []T) bool {
		k := key(candidate)
		return slices.ContainsFunc(acc, func(v T) bool {
			return key(v) == k
		})
	}
}

// PriceFormatter renders an amount in a currency as a display string.
// Implementations must not fail: an unknown currency degrades to its code.
type PriceFormatter interface {
	FormatPrice(ctx context.Context, currency string, amount int64) string
}

func categoryID(c Category) string { return c.ID }

func productID(p Product) string { return p.ID }

func identity(s string) string { return s }
