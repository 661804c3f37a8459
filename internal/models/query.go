// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SortKey selects the order of a listing.
type SortKey string

const (
	SortNewest SortKey = "newest"
	SortOldest SortKey = "oldest"
	SortTitle  SortKey = "title"
	SortAuthor SortKey = "author"
)

// SortKeys lists every supported sort key in display order.
var SortKeys = []SortKey{SortNewest, SortOldest, SortTitle, SortAuthor}

// Valid reports whether k is a supported sort key.
func (k SortKey) Valid() bool {
	for _, s := range SortKeys {
		if s == k {
			return true
		}
	}
	return false
}

// Label returns the human-readable name of the sort key.
func (k SortKey) Label() string {
	switch k {
	case SortNewest:
		return "Newest"
	case SortOldest:
		return "Oldest"
	case SortTitle:
		return "Title A-Z"
	case SortAuthor:
		return "Author A-Z"
	}
	return string(k)
}

// Limits for user-supplied query parameters.
const (
	maxSearchLen   = 200
	maxCategoryLen = 100
)

// QueryState is the user's current search text, category and sort order
// for a listing. It lives for a single request and is never persisted.
type QueryState struct {
	Search   string  `json:"q"`
	Category string  `json:"category"`
	Sort     SortKey `json:"sort"`
}

// DefaultQueryState returns the state of a freshly opened listing.
func DefaultQueryState() QueryState {
	return QueryState{Search: "", Category: CategoryAll, Sort: SortNewest}
}

// IsDefault reports whether q matches DefaultQueryState.
func (q QueryState) IsDefault() bool {
	return q == DefaultQueryState()
}

// Validate checks the state strictly. Listings normalize bad input instead;
// the JSON API rejects it.
func (q QueryState) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Search, validation.RuneLength(0, maxSearchLen)),
		validation.Field(&q.Category, validation.Required, validation.RuneLength(1, maxCategoryLen)),
		validation.Field(&q.Sort, validation.Required, validation.In(SortNewest, SortOldest, SortTitle, SortAuthor)),
	)
}
