/*
Package observability provides Prometheus instrumentation for the IG kernel.

Metrics are registered on a private registry so several kernels (or tests)
can coexist in one process. Hooks adapts the state counters to
domain.LifecycleHooks so the state machine reports transitions without
depending on Prometheus.
*/
package observability
