// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "strings"

const (
	// CategoryAll is the filter sentinel that matches every record.
	CategoryAll = "All"

	// CategoryGeneral is assigned to records without a category.
	CategoryGeneral = "General"
)

// BookCategories is the fixed set of book categories, in display order.
var BookCategories = []string{
	"technology",
	"business",
	"science",
	"arts",
	"education",
	"health",
}

// IsBookCategory reports whether name is one of BookCategories, ignoring case.
func IsBookCategory(name string) bool {
	for _, c := range BookCategories {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}
