// Package repository defines the failure vocabulary shared by all storage
// backends.
package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
