package server

import "context"

// Server is the lifecycle contract of the status server. It satisfies
// workers.Worker so it can run next to the sync manager.
type Server interface {
	// Run serves requests until ctx is done, then shuts down gracefully.
	Run(ctx context.Context) error
}
