// Package task provides a bounded-queue worker pool for executing
// workflow actions off the request path. It is wired in place of the
// synchronous dispatcher when async automation is enabled.
package task
