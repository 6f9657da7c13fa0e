package vsphere

import (
	"context"
	"log/slog"
	"time"

	"github.com/giantswarm/mcp-vsphere/internal/logging"
)

// Locator answers MAC address lookups against the vCenter inventory.
// Each lookup dials its own scoped connection and releases it on every
// exit path, so concurrent lookups never share session state.
type Locator struct {
	dialer Dialer
	logger *slog.Logger
}

// NewLocator creates a Locator over the given dialer.
func NewLocator(dialer Dialer, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{dialer: dialer, logger: logger}
}

// FindByMAC locates the VM whose network adapter carries the given MAC
// address and returns its name and placement.
//
// The input is normalized before comparison, so any casing or separator
// style matches. Malformed input fails with an InvalidInputError before any
// remote call; an exhausted enumeration fails with a NotFoundError. The
// first matching VM wins if the inventory holds duplicates.
func (l *Locator) FindByMAC(ctx context.Context, macAddress string) (*LookupResult, error) {
	mac, err := NormalizeMAC(macAddress)
	if err != nil {
		return nil, err
	}

	log := logging.WithOperation(l.logger, "find_vm_by_mac")
	start := time.Now()
	conn, err := l.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := conn.Close(ctx); closeErr != nil {
			log.Warn("failed to release vCenter session", logging.SanitizedErr(closeErr))
		}
	}()

	vms, err := conn.ListVirtualMachines(ctx)
	if err != nil {
		return nil, err
	}

	for _, vm := range vms {
		for _, addr := range vm.MACAddresses {
			if addr != mac {
				continue
			}
			log.Info("VM located by MAC address",
				logging.MAC(mac),
				logging.VM(vm.Name),
				logging.Datacenter(vm.Datacenter),
				logging.Cluster(vm.Cluster),
				slog.Duration(logging.KeyDuration, time.Since(start)))
			return &LookupResult{
				VMName:     vm.Name,
				Datacenter: vm.Datacenter,
				Cluster:    vm.Cluster,
				MAC:        mac,
			}, nil
		}
	}

	log.Info("no VM matches MAC address", logging.MAC(mac), "vms_scanned", len(vms))
	return nil, &NotFoundError{Kind: "MAC address", Value: mac}
}
