// Package delivery defines the contract every transport entrypoint of the
// application satisfies.
package delivery

import "context"

// Delivery is a long-running entrypoint such as an HTTP server. Serve blocks
// until the delivery stops or fails.
type Delivery interface {
	Serve(ctx context.Context) error
}
