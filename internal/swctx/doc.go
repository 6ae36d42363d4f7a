// Package swctx wires every subsystem into one long-lived Context: the
// logger, on-disk storage layout, service database, driver registry, and
// registry/download HTTP clients. It replaces per-package singletons —
// every subsystem constructor takes what it needs from Context explicitly,
// and Context.Build drives the resolve → download → detect → load → graph
// → execute pipeline end to end.
//
// Config is the single place that reads environment variables
// (SW_STORAGE, SW_REGISTRY_URL, SW_NO_NETWORK, SW_VERBOSE, SW_TRACE, SW_WORKERS,
// SW_COMMAND_TIMEOUT_MS, SW_MAX_ARGV_BYTES); no other package calls
// os.Getenv.
package swctx
