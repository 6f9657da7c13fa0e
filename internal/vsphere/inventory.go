package vsphere

import (
	"context"
	"fmt"

	"github.com/vmware/govmomi/view"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
	"golang.org/x/sync/errgroup"
)

// ListVirtualMachines takes a flat snapshot of the inventory. The VM,
// host, compute-resource, and datacenter views are retrieved concurrently;
// placement is resolved locally from the reference maps so the whole
// enumeration costs a handful of property-collector round trips regardless
// of inventory size.
func (s *session) ListVirtualMachines(ctx context.Context) ([]VirtualMachine, error) {
	var (
		vms      []mo.VirtualMachine
		hosts    []mo.HostSystem
		computes []mo.ComputeResource
		dcByVM   map[types.ManagedObjectReference]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.retrieveAll(gctx, "VirtualMachine",
			[]string{"name", "config.hardware.device", "runtime.host", "runtime.powerState"}, &vms)
	})
	g.Go(func() error {
		return s.retrieveAll(gctx, "HostSystem", []string{"name", "parent"}, &hosts)
	})
	g.Go(func() error {
		// ComputeResource covers clusters too; the view includes subtypes.
		return s.retrieveAll(gctx, "ComputeResource", []string{"name"}, &computes)
	})
	g.Go(func() error {
		var err error
		dcByVM, err = s.datacenterIndex(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("enumerating inventory: %w", err)
	}

	hostByRef := make(map[types.ManagedObjectReference]mo.HostSystem, len(hosts))
	for _, h := range hosts {
		hostByRef[h.Self] = h
	}
	computeNameByRef := make(map[types.ManagedObjectReference]string, len(computes))
	for _, c := range computes {
		computeNameByRef[c.Self] = c.Name
	}

	out := make([]VirtualMachine, 0, len(vms))
	for _, vm := range vms {
		rec := VirtualMachine{
			Name:       vm.Name,
			Datacenter: dcByVM[vm.Self],
			PowerState: string(vm.Runtime.PowerState),
		}
		rec.MACAddresses = macAddresses(vm.Config)
		rec.Cluster = clusterName(vm.Runtime.Host, hostByRef, computeNameByRef)
		out = append(out, rec)
	}

	s.logger.Debug("inventory snapshot complete", "vms", len(out))
	return out, nil
}

// retrieveAll collects properties for every object of the given kind under
// the root folder. The container view is destroyed before returning.
func (s *session) retrieveAll(ctx context.Context, kind string, props []string, dst interface{}) error {
	m := view.NewManager(s.client.Client)
	v, err := m.CreateContainerView(ctx, s.client.Client.ServiceContent.RootFolder, []string{kind}, true)
	if err != nil {
		return fmt.Errorf("creating %s view: %w", kind, err)
	}
	defer func() {
		_ = v.Destroy(ctx)
	}()
	if err := v.Retrieve(ctx, []string{kind}, props, dst); err != nil {
		return fmt.Errorf("retrieving %s properties: %w", kind, err)
	}
	return nil
}

// datacenterIndex maps every VM reference to its datacenter name by scoping
// one container view per datacenter. Expected inventories have a handful of
// datacenters at most.
func (s *session) datacenterIndex(ctx context.Context) (map[types.ManagedObjectReference]string, error) {
	var dcs []mo.Datacenter
	if err := s.retrieveAll(ctx, "Datacenter", []string{"name"}, &dcs); err != nil {
		return nil, err
	}

	m := view.NewManager(s.client.Client)
	index := make(map[types.ManagedObjectReference]string)
	for _, dc := range dcs {
		v, err := m.CreateContainerView(ctx, dc.Self, []string{"VirtualMachine"}, true)
		if err != nil {
			return nil, fmt.Errorf("creating VM view for datacenter %q: %w", dc.Name, err)
		}
		var vms []mo.VirtualMachine
		err = v.Retrieve(ctx, []string{"VirtualMachine"}, []string{"name"}, &vms)
		_ = v.Destroy(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing VMs in datacenter %q: %w", dc.Name, err)
		}
		for _, vm := range vms {
			index[vm.Self] = dc.Name
		}
	}
	return index, nil
}

// macAddresses extracts the normalized MACs of the VM's ethernet cards.
// VMs without a config (still provisioning, or orphaned) report none.
func macAddresses(config *types.VirtualMachineConfigInfo) []string {
	if config == nil {
		return nil
	}
	var macs []string
	for _, dev := range config.Hardware.Device {
		nic, ok := dev.(types.BaseVirtualEthernetCard)
		if !ok {
			continue
		}
		card := nic.GetVirtualEthernetCard()
		if card.MacAddress == "" {
			continue
		}
		mac, err := NormalizeMAC(card.MacAddress)
		if err != nil {
			// vCenter reported something that is not a MAC; skip it
			// rather than failing the whole enumeration.
			continue
		}
		macs = append(macs, mac)
	}
	return macs
}

// clusterName resolves the VM's compute placement: the cluster name when the
// host's parent is a cluster, otherwise the standalone host name. VMs with
// no host (never scheduled) resolve to empty.
func clusterName(hostRef *types.ManagedObjectReference, hosts map[types.ManagedObjectReference]mo.HostSystem, computeNames map[types.ManagedObjectReference]string) string {
	if hostRef == nil {
		return ""
	}
	host, ok := hosts[*hostRef]
	if !ok {
		return ""
	}
	if host.Parent != nil && host.Parent.Type == "ClusterComputeResource" {
		if name, ok := computeNames[*host.Parent]; ok {
			return name
		}
	}
	return host.Name
}
