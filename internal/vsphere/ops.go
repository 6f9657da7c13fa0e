package vsphere

import (
	"context"
	"errors"
	"fmt"

	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"

	"github.com/giantswarm/mcp-vsphere/internal/logging"
)

// defaultDiskKB is the disk size for newly created VMs (10 GB), matching
// the minimal template the server has always provisioned.
const defaultDiskKB = 10 * 1024 * 1024

// CreateVM provisions a minimal VM: paravirtual SCSI controller, one thin
// 10 GB disk, and an optional vmxnet3 NIC when a network is configured or
// requested.
func (s *session) CreateVM(ctx context.Context, req CreateVMRequest) error {
	if req.Name == "" {
		return &InvalidInputError{Input: req.Name, Reason: "VM name is required"}
	}
	if req.CPUs <= 0 || req.MemoryMB <= 0 {
		return &InvalidInputError{
			Input:  fmt.Sprintf("cpu=%d memory=%d", req.CPUs, req.MemoryMB),
			Reason: "cpu count and memory must be positive",
		}
	}

	f, dc, err := s.finder(ctx)
	if err != nil {
		return err
	}
	pool, err := s.resourcePool(ctx, f)
	if err != nil {
		return err
	}
	ds, dsName, err := s.datastore(ctx, f, req.Datastore)
	if err != nil {
		return err
	}

	spec := types.VirtualMachineConfigSpec{
		Name:     req.Name,
		NumCPUs:  req.CPUs,
		MemoryMB: req.MemoryMB,
		GuestId:  "otherGuest",
		Files: &types.VirtualMachineFileInfo{
			VmPathName: fmt.Sprintf("[%s]", dsName),
		},
	}

	var devices object.VirtualDeviceList
	scsi, err := devices.CreateSCSIController("pvscsi")
	if err != nil {
		return fmt.Errorf("creating SCSI controller spec: %w", err)
	}
	devices = append(devices, scsi)

	disk := devices.CreateDisk(scsi.(types.BaseVirtualController), ds.Reference(), "")
	disk.CapacityInKB = defaultDiskKB
	if backing, ok := disk.Backing.(*types.VirtualDiskFlatVer2BackingInfo); ok {
		backing.ThinProvisioned = types.NewBool(true)
		backing.DiskMode = string(types.VirtualDiskModePersistent)
	}
	devices = append(devices, disk)

	networkName := req.Network
	if networkName == "" {
		networkName = s.cfg.Network
	}
	if networkName != "" {
		net, err := f.Network(ctx, networkName)
		if err != nil {
			return wrapFindError(err, "network", networkName)
		}
		backing, err := net.EthernetCardBackingInfo(ctx)
		if err != nil {
			return fmt.Errorf("resolving backing for network %q: %w", networkName, err)
		}
		nic, err := devices.CreateEthernetCard("vmxnet3", backing)
		if err != nil {
			return fmt.Errorf("creating ethernet card spec: %w", err)
		}
		devices = append(devices, nic)
	}

	deviceChange, err := devices.ConfigSpec(types.VirtualDeviceConfigSpecOperationAdd)
	if err != nil {
		return fmt.Errorf("building device change spec: %w", err)
	}
	spec.DeviceChange = deviceChange

	folders, err := dc.Folders(ctx)
	if err != nil {
		return fmt.Errorf("resolving datacenter folders: %w", err)
	}
	task, err := folders.VmFolder.CreateVM(ctx, spec, pool, nil)
	if err != nil {
		return fmt.Errorf("submitting CreateVM task: %w", err)
	}
	if err := task.Wait(ctx); err != nil {
		return fmt.Errorf("creating VM %q: %w", req.Name, err)
	}

	s.logger.Info("VM created", logging.VM(req.Name), logging.Datastore(dsName))
	return nil
}

// CloneVM clones an existing VM or template into a new powered-off VM,
// relocated to the default datastore and resource pool.
func (s *session) CloneVM(ctx context.Context, templateName, newName string) error {
	if templateName == "" || newName == "" {
		return &InvalidInputError{Input: templateName + "/" + newName, Reason: "template and new VM names are required"}
	}

	f, dc, err := s.finder(ctx)
	if err != nil {
		return err
	}
	tpl, err := s.findVM(ctx, f, templateName)
	if err != nil {
		return err
	}
	pool, err := s.resourcePool(ctx, f)
	if err != nil {
		return err
	}
	ds, _, err := s.datastore(ctx, f, "")
	if err != nil {
		return err
	}
	folders, err := dc.Folders(ctx)
	if err != nil {
		return fmt.Errorf("resolving datacenter folders: %w", err)
	}

	poolRef := pool.Reference()
	dsRef := ds.Reference()
	spec := types.VirtualMachineCloneSpec{
		PowerOn:  false,
		Template: false,
		Location: types.VirtualMachineRelocateSpec{
			Pool:      &poolRef,
			Datastore: &dsRef,
		},
	}

	task, err := tpl.Clone(ctx, folders.VmFolder, newName, spec)
	if err != nil {
		return fmt.Errorf("submitting clone task: %w", err)
	}
	if err := task.Wait(ctx); err != nil {
		return fmt.Errorf("cloning VM %q to %q: %w", templateName, newName, err)
	}

	s.logger.Info("VM cloned", "template", templateName, logging.VM(newName))
	return nil
}

// DeleteVM destroys the named VM.
func (s *session) DeleteVM(ctx context.Context, name string) error {
	f, _, err := s.finder(ctx)
	if err != nil {
		return err
	}
	vm, err := s.findVM(ctx, f, name)
	if err != nil {
		return err
	}
	task, err := vm.Destroy(ctx)
	if err != nil {
		return fmt.Errorf("submitting destroy task: %w", err)
	}
	if err := task.Wait(ctx); err != nil {
		return fmt.Errorf("deleting VM %q: %w", name, err)
	}

	s.logger.Info("VM deleted", logging.VM(name))
	return nil
}

// PowerOn powers on the named VM. Returns changed=false when the VM was
// already powered on.
func (s *session) PowerOn(ctx context.Context, name string) (bool, error) {
	return s.setPowerState(ctx, name, true)
}

// PowerOff powers off the named VM. Returns changed=false when the VM was
// already powered off.
func (s *session) PowerOff(ctx context.Context, name string) (bool, error) {
	return s.setPowerState(ctx, name, false)
}

func (s *session) setPowerState(ctx context.Context, name string, on bool) (bool, error) {
	f, _, err := s.finder(ctx)
	if err != nil {
		return false, err
	}
	vm, err := s.findVM(ctx, f, name)
	if err != nil {
		return false, err
	}

	state, err := vm.PowerState(ctx)
	if err != nil {
		return false, fmt.Errorf("reading power state of %q: %w", name, err)
	}

	var task *object.Task
	switch {
	case on && state == types.VirtualMachinePowerStatePoweredOn:
		return false, nil
	case !on && state == types.VirtualMachinePowerStatePoweredOff:
		return false, nil
	case on:
		task, err = vm.PowerOn(ctx)
	default:
		task, err = vm.PowerOff(ctx)
	}
	if err != nil {
		return false, fmt.Errorf("submitting power task for %q: %w", name, err)
	}
	if err := task.Wait(ctx); err != nil {
		return false, fmt.Errorf("changing power state of %q: %w", name, err)
	}

	s.logger.Info("VM power state changed", logging.VM(name), "powered_on", on)
	return true, nil
}

// finder returns a datacenter-scoped finder. The configured datacenter is
// used when set, otherwise the default (first) datacenter.
func (s *session) finder(ctx context.Context) (*find.Finder, *object.Datacenter, error) {
	f := find.NewFinder(s.client.Client, true)

	var (
		dc  *object.Datacenter
		err error
	)
	if s.cfg.Datacenter != "" {
		dc, err = f.Datacenter(ctx, s.cfg.Datacenter)
	} else {
		dc, err = f.DefaultDatacenter(ctx)
	}
	if err != nil {
		return nil, nil, wrapFindError(err, "datacenter", s.cfg.Datacenter)
	}
	f.SetDatacenter(dc)
	return f, dc, nil
}

// resourcePool resolves the target resource pool: the configured cluster's
// root pool when set, otherwise the datacenter's default pool.
func (s *session) resourcePool(ctx context.Context, f *find.Finder) (*object.ResourcePool, error) {
	if s.cfg.Cluster != "" {
		cluster, err := f.ClusterComputeResource(ctx, s.cfg.Cluster)
		if err != nil {
			return nil, wrapFindError(err, "cluster", s.cfg.Cluster)
		}
		pool, err := cluster.ResourcePool(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving resource pool of cluster %q: %w", s.cfg.Cluster, err)
		}
		return pool, nil
	}

	pool, err := f.DefaultResourcePool(ctx)
	if err != nil {
		return nil, wrapFindError(err, "resource pool", "")
	}
	return pool, nil
}

// datastore resolves the target datastore: an explicit override, the
// configured default, or the datastore with the most free space.
func (s *session) datastore(ctx context.Context, f *find.Finder, override string) (*object.Datastore, string, error) {
	name := override
	if name == "" {
		name = s.cfg.Datastore
	}
	if name != "" {
		ds, err := f.Datastore(ctx, name)
		if err != nil {
			return nil, "", wrapFindError(err, "datastore", name)
		}
		return ds, name, nil
	}
	return s.mostFreeDatastore(ctx, f)
}

// mostFreeDatastore picks the datastore with the most free space, the same
// heuristic the server has always used when none is configured.
func (s *session) mostFreeDatastore(ctx context.Context, f *find.Finder) (*object.Datastore, string, error) {
	dss, err := f.DatastoreList(ctx, "*")
	if err != nil {
		return nil, "", wrapFindError(err, "datastore", "")
	}

	refs := make([]types.ManagedObjectReference, 0, len(dss))
	for _, ds := range dss {
		refs = append(refs, ds.Reference())
	}
	var props []mo.Datastore
	pc := property.DefaultCollector(s.client.Client)
	if err := pc.Retrieve(ctx, refs, []string{"summary"}, &props); err != nil {
		return nil, "", fmt.Errorf("retrieving datastore summaries: %w", err)
	}

	var (
		best     *types.ManagedObjectReference
		bestName string
		bestFree int64 = -1
	)
	for i := range props {
		if props[i].Summary.FreeSpace > bestFree {
			ref := props[i].Self
			best = &ref
			bestName = props[i].Summary.Name
			bestFree = props[i].Summary.FreeSpace
		}
	}
	if best == nil {
		return nil, "", &NotFoundError{Kind: "datastore", Value: "*"}
	}
	return object.NewDatastore(s.client.Client, *best), bestName, nil
}

// findVM looks up a VM by name, translating finder misses into the
// package's not-found taxonomy.
func (s *session) findVM(ctx context.Context, f *find.Finder, name string) (*object.VirtualMachine, error) {
	if name == "" {
		return nil, &InvalidInputError{Input: name, Reason: "VM name is required"}
	}
	vm, err := f.VirtualMachine(ctx, name)
	if err != nil {
		return nil, wrapFindError(err, "name", name)
	}
	return vm, nil
}

// wrapFindError maps govmomi finder misses onto NotFoundError and leaves
// everything else wrapped as-is.
func wrapFindError(err error, kind, value string) error {
	var nf *find.NotFoundError
	if errors.As(err, &nf) {
		return &NotFoundError{Kind: kind, Value: value}
	}
	return fmt.Errorf("looking up %s %q: %w", kind, value, err)
}
