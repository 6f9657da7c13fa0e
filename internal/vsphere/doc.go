// Package vsphere provides the vCenter client layer for the MCP vSphere server.
//
// The package exposes a narrow Connection interface over the vSphere inventory
// so that tool handlers and the MAC-address locator can be tested against
// fakes (or govmomi's vcsim simulator) without a real vCenter endpoint.
//
// Connections are scoped: a Dialer produces a Connection per operation, and
// callers release it with Close when done. Authentication and placement
// defaults come from an immutable Config loaded once at startup from
// VCENTER_* environment variables.
package vsphere
