package vsphere

import (
	"context"
)

// VirtualMachine is a flat record of one inventory VM with the attributes
// the MCP tools need: identity, network adapters, and placement.
type VirtualMachine struct {
	// Name is the VM display name.
	Name string

	// MACAddresses holds the normalized (lowercase, colon-separated) MAC
	// addresses of the VM's virtual ethernet cards. VMs without a config
	// (e.g. mid-provisioning) have none.
	MACAddresses []string

	// Datacenter is the name of the enclosing datacenter.
	Datacenter string

	// Cluster is the name of the enclosing cluster, or the standalone host
	// name when the VM is not clustered. Empty when the VM has no host.
	Cluster string

	// PowerState is the vSphere power state string, e.g. "poweredOn".
	PowerState string
}

// LookupResult is the answer to a MAC address lookup.
type LookupResult struct {
	VMName     string `json:"vm_name"`
	Datacenter string `json:"datacenter"`
	Cluster    string `json:"cluster,omitempty"`
	MAC        string `json:"mac_address"`
}

// CreateVMRequest describes a minimal VM to create.
type CreateVMRequest struct {
	Name     string
	CPUs     int32
	MemoryMB int64
	// Datastore and Network override the configured placement defaults
	// when non-empty.
	Datastore string
	Network   string
}

// VMStats is a point-in-time usage snapshot for one VM. The network
// counters are pointers because performance data is best-effort: when the
// performance manager query fails the lookup still succeeds and the
// counters are null.
type VMStats struct {
	CPUUsageMHz    int32   `json:"cpu_usage"`
	MemoryUsageMB  int32   `json:"memory_usage"`
	StorageUsageGB float64 `json:"storage_usage"`
	NetworkTxKBps  *int64  `json:"network_transmit_KBps"`
	NetworkRxKBps  *int64  `json:"network_receive_KBps"`
}

// InventoryLister enumerates the virtual machines visible to a session.
// The MAC locator depends on nothing else, which keeps the matching logic
// testable against fakes.
type InventoryLister interface {
	// ListVirtualMachines returns a flat snapshot of all VMs the session
	// can see, with adapters and placement resolved.
	ListVirtualMachines(ctx context.Context) ([]VirtualMachine, error)
}

// LifecycleManager creates and removes virtual machines.
type LifecycleManager interface {
	CreateVM(ctx context.Context, req CreateVMRequest) error
	CloneVM(ctx context.Context, templateName, newName string) error
	DeleteVM(ctx context.Context, name string) error
}

// PowerManager drives VM power transitions. Both operations are idempotent:
// the returned changed flag is false when the VM was already in the
// requested state.
type PowerManager interface {
	PowerOn(ctx context.Context, name string) (changed bool, err error)
	PowerOff(ctx context.Context, name string) (changed bool, err error)
}

// StatsReader retrieves usage statistics for a VM.
type StatsReader interface {
	VMStats(ctx context.Context, name string) (*VMStats, error)
}

// Connection is an authenticated, scoped vCenter session. Callers must
// release it with Close exactly once; Close is safe on every exit path
// including mid-enumeration failures.
type Connection interface {
	InventoryLister
	LifecycleManager
	PowerManager
	StatsReader

	// Close logs out and releases the session.
	Close(ctx context.Context) error
}

// Dialer produces scoped connections. The production implementation logs in
// to vCenter with the configured credentials; tests substitute fakes.
type Dialer interface {
	// Dial establishes an authenticated session. Handshake failures
	// (network, TLS, or credentials) are reported as a *ConnectionError.
	Dial(ctx context.Context) (Connection, error)
}
