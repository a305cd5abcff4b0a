// Package dispatch bounds concurrent outbound API calls with a fixed-size
// worker pool. Callers block for a slot, and each call runs under a derived
// timeout context.
package dispatch
