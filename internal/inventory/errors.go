package inventory

import "errors"

// ErrDataNotFound is returned when the backing inventory source is absent
// or unreadable. Callers treat it as fatal for the run.
var ErrDataNotFound = errors.New("inventory source not found")

// ErrMalformedRecord is returned when an inventory record fails shape
// validation (missing name, negative quantity). Dropping such records
// silently would break the conservation invariant, so the whole load fails.
var ErrMalformedRecord = errors.New("malformed inventory record")
