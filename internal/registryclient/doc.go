// Package registryclient implements the remote registry wire contract: a
// single idempotent resolvePackages(batch) RPC, retried with bounded
// exponential backoff (initial 500ms, factor 2, max 5 attempts).
//
// The HTTP client is resty.dev/v3; its built-in retry policy
// (SetRetryCount/SetRetryWaitTime) expresses the backoff schedule directly
// instead of a hand-rolled retry loop.
package registryclient
