package vsphere

import (
	"context"
	"fmt"

	"github.com/vmware/govmomi/performance"
	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"

	"github.com/giantswarm/mcp-vsphere/internal/logging"
)

const (
	metricNetTx = "net.transmitted.average"
	metricNetRx = "net.received.average"
)

// VMStats returns a usage snapshot for the named VM. CPU, memory, and
// storage come from quick stats; the network throughput counters come from
// the performance manager and are best-effort: realtime samples are not
// available for every VM (powered off, or stats not yet rolled up), in
// which case the counters stay nil and the call still succeeds.
func (s *session) VMStats(ctx context.Context, name string) (*VMStats, error) {
	f, _, err := s.finder(ctx)
	if err != nil {
		return nil, err
	}
	vm, err := s.findVM(ctx, f, name)
	if err != nil {
		return nil, err
	}

	var props mo.VirtualMachine
	pc := property.DefaultCollector(s.client.Client)
	if err := pc.RetrieveOne(ctx, vm.Reference(), []string{"summary.quickStats", "summary.storage"}, &props); err != nil {
		return nil, fmt.Errorf("retrieving stats for %q: %w", name, err)
	}

	stats := &VMStats{
		CPUUsageMHz:   props.Summary.QuickStats.OverallCpuUsage,
		MemoryUsageMB: props.Summary.QuickStats.GuestMemoryUsage,
	}
	if storage := props.Summary.Storage; storage != nil {
		stats.StorageUsageGB = float64(storage.Committed) / (1 << 30)
	}

	tx, rx, err := s.networkThroughput(ctx, vm.Reference())
	if err != nil {
		s.logger.Debug("network throughput unavailable", logging.VM(name), logging.Err(err))
	} else {
		stats.NetworkTxKBps = tx
		stats.NetworkRxKBps = rx
	}

	return stats, nil
}

// networkThroughput samples the realtime net transmit/receive rates in
// KBps. A nil counter means the metric was absent from the sample.
func (s *session) networkThroughput(ctx context.Context, ref types.ManagedObjectReference) (tx, rx *int64, err error) {
	perfMgr := performance.NewManager(s.client.Client)
	spec := types.PerfQuerySpec{
		MaxSample:  1,
		IntervalId: 20, // realtime
	}
	sample, err := perfMgr.SampleByName(ctx, spec, []string{metricNetTx, metricNetRx}, []types.ManagedObjectReference{ref})
	if err != nil {
		return nil, nil, fmt.Errorf("sampling performance counters: %w", err)
	}
	series, err := perfMgr.ToMetricSeries(ctx, sample)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding performance samples: %w", err)
	}

	for _, entity := range series {
		for _, metric := range entity.Value {
			if len(metric.Value) == 0 || metric.Instance != "" {
				continue
			}
			v := metric.Value[len(metric.Value)-1]
			switch metric.Name {
			case metricNetTx:
				tx = &v
			case metricNetRx:
				rx = &v
			}
		}
	}
	return tx, rx, nil
}
