// Package api implements the event ingestion gateway: the tracking pixel,
// the click redirect, and the inbound webhook. Each entry point is
// best-effort and never leaks internal errors to the caller.
package api
