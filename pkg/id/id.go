// Package id mints the identifiers stored for trades and accounts.
package id

import "github.com/oklog/ulid/v2"

const shortLen = 8

// New returns a ULID. IDs minted within one millisecond still sort in
// creation order.
func New() string {
	return ulid.Make().String()
}

// Short is the display prefix used in listings.
func Short(full string) string {
	if len(full) <= shortLen {
		return full
	}
	return full[:shortLen]
}
