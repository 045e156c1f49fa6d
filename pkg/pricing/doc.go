// Package pricing resolves the credit cost of a tool invocation from the
// active catalog.
package pricing
