/*
Package observability turns engine lifecycle events into logs and metrics.

Both Metrics.Hooks and LoggingHooks return domain.LifecycleHooks, so they can
be merged and handed to turing.WithLifecycleHooks or session.WithLifecycleHooks.
*/
package observability
