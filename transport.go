package ilink3

import "errors"

// ErrBackPressured is returned (wrapped in a ClaimResult, never as a Go
// error from Transport methods) to signal that the reliable transport
// could not currently accept a claim. It is not a failure: the caller
// retries on the next poll (spec.md §5 "Suspension").
var ErrBackPressured = errors.New("ilink3: transport back-pressured")

// ErrTransportClosed indicates the transport observed a terminal close;
// unlike back-pressure this is not retried.
var ErrTransportClosed = errors.New("ilink3: transport closed")

// ClaimResult is the outcome of a Transport.Claim call. Modeled as a
// dedicated result variant (spec.md §9 "Back-pressure as negative
// sentinel") rather than a bare signed integer, so callers don't have to
// remember which negative values mean what.
type ClaimResult struct {
	// Position is the transport-assigned log position, valid only when
	// Err is nil.
	Position int64
	// Err is nil on success, ErrBackPressured on transient back-pressure,
	// or ErrTransportClosed (possibly wrapping a close reason) otherwise.
	Err error
}

// Committed reports whether the claim succeeded and the caller should
// proceed to write the payload and call Commit.
func (r ClaimResult) Committed() bool { return r.Err == nil }

// Pressured reports whether the claim failed due to transient
// back-pressure (retry on next poll).
func (r ClaimResult) Pressured() bool { return errors.Is(r.Err, ErrBackPressured) }

// Closed reports whether the transport observed a terminal close.
func (r ClaimResult) Closed() bool {
	return r.Err != nil && !errors.Is(r.Err, ErrBackPressured)
}

// Transport is the reliable ordered messaging transport the core
// consumes (spec.md §1 "Out of scope"). It exposes only the claim/commit
// primitives and the back-pressure signal; everything about durability,
// delivery and reconnection belongs to the transport implementation.
type Transport interface {
	// Claim reserves length contiguous bytes in the outbound buffer and
	// returns a slice into that region for the caller to fill, plus the
	// claim result. The returned slice is valid only when
	// result.Committed() is true, and only until Commit is called.
	Claim(length int) (buf []byte, result ClaimResult)

	// Commit publishes the previously claimed region.
	Commit()
}
