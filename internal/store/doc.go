// Package store defines the data access interface for the remote calendar
// and the sentinel errors implementations map their failures onto.
//
// The remote calendar is the single source of truth. Callers never cache
// events across calls and always re-fetch before mutating; the store offers
// no transactions, so the idempotency rules in the series package are what
// keep concurrent mutations safe.
package store
