// Package shutdown coordinates graceful process termination.
//
// A Handler waits for SIGINT, SIGTERM, context cancellation or an explicit
// Trigger, then runs the registered hooks in reverse order under a shared
// timeout.
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(server.Shutdown)
//	err := h.Wait(ctx)
package shutdown
