package httpapi

import "context"

// serverBaseCtx is canceled on daemon shutdown so handler work stops
// even while the client connection stays open.
var serverBaseCtx = context.Background()

// SetBaseContext installs the process-lifetime context used by handlers.
// Passing nil restores the Background default.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	serverBaseCtx = ctx
}

// joinContexts derives a context that is canceled as soon as either
// input is done. The returned cancel must be called on handler exit to
// detach the watchers.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	stopA := context.AfterFunc(a, cancel)
	stopB := context.AfterFunc(b, cancel)
	return ctx, func() {
		stopA()
		stopB()
		cancel()
	}
}
