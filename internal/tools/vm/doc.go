// Package vm implements the MCP tools for virtual machine operations:
// MAC address lookup, inventory listing, lifecycle management (create,
// clone, delete), power transitions, and usage statistics.
//
// Every tool call dials a fresh vCenter session through the server's
// Dialer and releases it before returning, so no connection outlives the
// call that opened it.
package vm
