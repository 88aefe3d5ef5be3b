// Package repository implements the schedule stores.  Every store exposes
// the same three operations (read the whole table, conditionally rewrite one
// row, make sure the table exists) so the booking service can run against a
// workbook, MySQL or memory interchangeably.
//
// The sentinel errors below let higher layers tell a lost race apart from
// an infrastructure failure.
package repository

import "errors"

// ErrRowChanged is returned by WriteRow when the target row no longer holds
// the values the caller read.  The booking service translates it into a
// "slot already taken" rejection.
var ErrRowChanged = errors.New("row changed since it was read")

// ErrRowNotFound is returned by WriteRow when no row lives on the given line.
var ErrRowNotFound = errors.New("row not found")
