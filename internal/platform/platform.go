// Package platform holds the delivery clients for the social platforms a
// firing may target. Each client is independently invocable; the dispatch
// layer owns timeouts and failure isolation.
package platform

import "context"

// Client posts text (optionally with an image) to one platform.
type Client interface {
	// Name returns the platform identifier used in dispatch results.
	Name() string
	// Post publishes text and returns the created post's ID.
	Post(ctx context.Context, text, imageURL string) (string, error)
}

// Error is a delivery failure on one platform, with a short reason usable in
// dispatch outcomes.
type Error struct {
	Platform string
	Reason   string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Platform + ": " + e.Reason + ": " + e.Err.Error()
	}
	return e.Platform + ": " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }
