// Package category holds the slice of the categories domain this core
// depends on. Categories are managed by another service; purchases only
// reference them by id, so existence checks are the sole operation
// consumed here.
package category

import "errors"

// Domain errors
var (
	ErrCategoryNotFound = errors.New("category not found")
)
