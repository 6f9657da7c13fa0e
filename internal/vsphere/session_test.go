package vsphere

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmware/govmomi/simulator"
)

// simConfig starts a vCenter simulator with the default VPX inventory (one
// datacenter DC0, cluster DC0_C0, standalone host DC0_H0, four VMs) and
// returns a Config pointing at it.
func simConfig(t *testing.T) *Config {
	t.Helper()

	model := simulator.VPX()
	require.NoError(t, model.Create())
	t.Cleanup(model.Remove)

	srv := model.Service.NewServer()
	t.Cleanup(srv.Close)

	password, _ := srv.URL.User.Password()
	return &Config{
		Host:     srv.URL.String(),
		User:     srv.URL.User.Username(),
		Password: password,
		Insecure: true,
		Timeout:  DefaultTimeout,
	}
}

func simDial(t *testing.T, cfg *Config) Connection {
	t.Helper()

	conn, err := NewDialer(cfg, discardLogger()).Dial(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close(context.Background())
	})
	return conn
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var normalizedMAC = regexp.MustCompile(`^([0-9a-f]{2}:){5}[0-9a-f]{2}$`)

func TestSessionListVirtualMachines(t *testing.T) {
	conn := simDial(t, simConfig(t))
	ctx := context.Background()

	vms, err := conn.ListVirtualMachines(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, vms)

	byName := make(map[string]VirtualMachine, len(vms))
	for _, vm := range vms {
		byName[vm.Name] = vm

		assert.Equal(t, "DC0", vm.Datacenter)
		for _, mac := range vm.MACAddresses {
			assert.Regexp(t, normalizedMAC, mac)
		}
	}

	clustered, ok := byName["DC0_C0_RP0_VM0"]
	require.True(t, ok)
	assert.Equal(t, "DC0_C0", clustered.Cluster)
	assert.NotEmpty(t, clustered.MACAddresses)

	standalone, ok := byName["DC0_H0_VM0"]
	require.True(t, ok)
	// Standalone hosts report the host name as the compute placement.
	assert.Equal(t, "DC0_H0", standalone.Cluster)
}

func TestLocatorEndToEnd(t *testing.T) {
	cfg := simConfig(t)
	conn := simDial(t, cfg)
	ctx := context.Background()

	vms, err := conn.ListVirtualMachines(ctx)
	require.NoError(t, err)

	var target VirtualMachine
	for _, vm := range vms {
		if vm.Name == "DC0_C0_RP0_VM0" {
			target = vm
		}
	}
	require.NotEmpty(t, target.MACAddresses)

	// Query with uppercase, dash-separated input; the locator dials its
	// own scoped session.
	query := strings.ToUpper(strings.ReplaceAll(target.MACAddresses[0], ":", "-"))
	locator := NewLocator(NewDialer(cfg, discardLogger()), discardLogger())

	got, err := locator.FindByMAC(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, "DC0_C0_RP0_VM0", got.VMName)
	assert.Equal(t, "DC0", got.Datacenter)
	assert.Equal(t, "DC0_C0", got.Cluster)
	assert.Equal(t, target.MACAddresses[0], got.MAC)
}

func TestSessionCreateVM(t *testing.T) {
	cfg := simConfig(t)
	cfg.Cluster = "DC0_C0"
	cfg.Network = "VM Network"
	conn := simDial(t, cfg)
	ctx := context.Background()

	err := conn.CreateVM(ctx, CreateVMRequest{Name: "build-agent-01", CPUs: 2, MemoryMB: 1024})
	require.NoError(t, err)

	vms, err := conn.ListVirtualMachines(ctx)
	require.NoError(t, err)

	var created *VirtualMachine
	for i := range vms {
		if vms[i].Name == "build-agent-01" {
			created = &vms[i]
		}
	}
	require.NotNil(t, created, "created VM must appear in the inventory")
	assert.Equal(t, "DC0", created.Datacenter)
	assert.NotEmpty(t, created.MACAddresses, "configured network implies a NIC")
}

func TestSessionCreateVMValidation(t *testing.T) {
	conn := simDial(t, simConfig(t))
	ctx := context.Background()

	err := conn.CreateVM(ctx, CreateVMRequest{Name: "", CPUs: 1, MemoryMB: 512})
	assert.True(t, IsInvalidInput(err))

	err = conn.CreateVM(ctx, CreateVMRequest{Name: "bad", CPUs: 0, MemoryMB: 512})
	assert.True(t, IsInvalidInput(err))

	err = conn.CreateVM(ctx, CreateVMRequest{Name: "bad", CPUs: 1, MemoryMB: -1})
	assert.True(t, IsInvalidInput(err))
}

func TestSessionCloneAndDeleteVM(t *testing.T) {
	cfg := simConfig(t)
	cfg.Cluster = "DC0_C0"
	conn := simDial(t, cfg)
	ctx := context.Background()

	require.NoError(t, conn.CloneVM(ctx, "DC0_C0_RP0_VM0", "clone-01"))

	vms, err := conn.ListVirtualMachines(ctx)
	require.NoError(t, err)

	var clone *VirtualMachine
	for i := range vms {
		if vms[i].Name == "clone-01" {
			clone = &vms[i]
		}
	}
	require.NotNil(t, clone)
	assert.Equal(t, "poweredOff", clone.PowerState, "clones start powered off")

	require.NoError(t, conn.DeleteVM(ctx, "clone-01"))

	vms, err = conn.ListVirtualMachines(ctx)
	require.NoError(t, err)
	for _, vm := range vms {
		assert.NotEqual(t, "clone-01", vm.Name)
	}
}

func TestSessionDeleteVMNotFound(t *testing.T) {
	conn := simDial(t, simConfig(t))

	err := conn.DeleteVM(context.Background(), "no-such-vm")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestSessionPowerTransitions(t *testing.T) {
	conn := simDial(t, simConfig(t))
	ctx := context.Background()

	const name = "DC0_H0_VM0"

	// Simulator VMs start powered on.
	changed, err := conn.PowerOn(ctx, name)
	require.NoError(t, err)
	assert.False(t, changed, "powering on a running VM is a no-op")

	changed, err = conn.PowerOff(ctx, name)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = conn.PowerOff(ctx, name)
	require.NoError(t, err)
	assert.False(t, changed, "powering off a stopped VM is a no-op")

	changed, err = conn.PowerOn(ctx, name)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestSessionVMStats(t *testing.T) {
	conn := simDial(t, simConfig(t))

	stats, err := conn.VMStats(context.Background(), "DC0_C0_RP0_VM0")
	require.NoError(t, err)
	require.NotNil(t, stats)

	assert.GreaterOrEqual(t, stats.CPUUsageMHz, int32(0))
	assert.GreaterOrEqual(t, stats.MemoryUsageMB, int32(0))
	assert.GreaterOrEqual(t, stats.StorageUsageGB, float64(0))
}

func TestSessionVMStatsNotFound(t *testing.T) {
	conn := simDial(t, simConfig(t))

	_, err := conn.VMStats(context.Background(), "no-such-vm")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestDialerBadCredentials(t *testing.T) {
	cfg := simConfig(t)
	// The simulator rejects empty credentials with InvalidLogin, which is
	// the same fault a real vCenter raises for a wrong password.
	cfg.Password = ""

	_, err := NewDialer(cfg, discardLogger()).Dial(context.Background())
	require.Error(t, err)
	assert.True(t, IsConnectionError(err))

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.True(t, connErr.Auth, "credential rejection must map to the auth branch")
}

func TestDialerUnreachableHost(t *testing.T) {
	cfg := &Config{
		Host:     "https://127.0.0.1:1", // nothing listens here
		User:     "admin",
		Password: "secret",
		Insecure: true,
		Timeout:  DefaultTimeout,
	}

	_, err := NewDialer(cfg, discardLogger()).Dial(context.Background())
	require.Error(t, err)
	assert.True(t, IsConnectionError(err))
}

func TestSessionCloseIdempotent(t *testing.T) {
	conn := simDial(t, simConfig(t))
	ctx := context.Background()

	require.NoError(t, conn.Close(ctx))
	// Second close returns the recorded result without a second logout.
	require.NoError(t, conn.Close(ctx))
}

// fakeSessionCounter records session opens and closes.
type fakeSessionCounter struct {
	active int32
}

func (c *fakeSessionCounter) IncrementActiveSessions(context.Context) {
	atomic.AddInt32(&c.active, 1)
}

func (c *fakeSessionCounter) DecrementActiveSessions(context.Context) {
	atomic.AddInt32(&c.active, -1)
}

func TestDialerSessionCounter(t *testing.T) {
	cfg := simConfig(t)
	ctx := context.Background()

	counter := &fakeSessionCounter{}
	dialer := NewDialer(cfg, discardLogger(), WithSessionCounter(counter))

	conn, err := dialer.Dial(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&counter.active))

	conn2, err := dialer.Dial(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&counter.active))

	require.NoError(t, conn2.Close(ctx))
	require.NoError(t, conn.Close(ctx))
	assert.Equal(t, int32(0), atomic.LoadInt32(&counter.active))

	// Repeated close must not drive the count negative.
	require.NoError(t, conn.Close(ctx))
	assert.Equal(t, int32(0), atomic.LoadInt32(&counter.active))
}

func TestDialerSessionCounterNotIncrementedOnFailure(t *testing.T) {
	cfg := simConfig(t)
	cfg.Password = ""

	counter := &fakeSessionCounter{}
	_, err := NewDialer(cfg, discardLogger(), WithSessionCounter(counter)).Dial(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&counter.active))
}
