package core

import "context"

// Worker is a long-running background component of a module, started by the
// run command and stopped on shutdown.
type Worker interface {
	Run(ctx context.Context) error
}
