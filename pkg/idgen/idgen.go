// Package idgen produces task identifiers.
//
// Ids are UUIDv7 strings: a millisecond timestamp followed by random bits,
// so ids sort roughly by creation time and two ids minted in the same
// millisecond still differ. There is no collision check and no central
// coordination.
package idgen

import "github.com/google/uuid"

// Generator returns a fresh task id on every call.
type Generator func() string

// New returns a new task id.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
