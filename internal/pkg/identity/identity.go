// Package identity encodes the external identifiers of calendar rows and of
// the virtual occurrences derived from them.
//
// Concrete rows (masters and exceptions) use a fixed-width id. A virtual
// occurrence is addressed as {master id}{Separator}{unix seconds}.
package identity

import (
	"strconv"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	IDLength  = 21
	Separator = "_occurrence_"
)

// NewID returns a random fixed-width row identifier.
func NewID() (string, error) {
	return gonanoid.New(IDLength)
}

func Encode(masterID string, instant time.Time) string {
	return masterID + Separator + strconv.FormatInt(instant.Unix(), 10)
}

// Decode splits a virtual occurrence identity. Anything that is not exactly
// the shape produced by Encode is returned unchanged with a nil instant,
// meaning it names a concrete row.
func Decode(identity string) (string, *time.Time) {
	if len(identity) <= IDLength {
		return identity, nil
	}

	rest := identity[IDLength:]
	if !strings.HasPrefix(rest, Separator) {
		return identity, nil
	}

	digits := rest[len(Separator):]
	if digits == "" || strings.TrimLeft(digits, "-0123456789") != "" {
		return identity, nil
	}

	ts, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || strconv.FormatInt(ts, 10) != digits {
		return identity, nil
	}

	instant := time.Unix(ts, 0).UTC()
	return identity[:IDLength], &instant
}
