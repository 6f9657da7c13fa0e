package instrumentation

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// testMeter returns a meter backed by a manual reader so tests can collect
// and inspect recorded data points.
func testMeter() (metric.Meter, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return provider.Meter("test"), reader
}

// collectMetricNames gathers the names of all metrics with at least one data point.
func collectMetricNames(t *testing.T, reader *sdkmetric.ManualReader) map[string]bool {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	names := make(map[string]bool)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	return names
}

func TestNewMetrics(t *testing.T) {
	meter, _ := testMeter()

	m, err := NewMetrics(meter, false)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	if m == nil {
		t.Fatal("Metrics should not be nil")
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	meter, reader := testMeter()
	m, err := NewMetrics(meter, false)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	ctx := context.Background()
	m.RecordHTTPRequest(ctx, "POST", "/mcp", 200, 50*time.Millisecond)

	names := collectMetricNames(t, reader)
	if !names["http_requests_total"] {
		t.Error("http_requests_total should have data points")
	}
	if !names["http_request_duration_seconds"] {
		t.Error("http_request_duration_seconds should have data points")
	}
}

func TestRecordVSphereOperation(t *testing.T) {
	meter, reader := testMeter()
	m, err := NewMetrics(meter, false)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	ctx := context.Background()
	m.RecordVSphereOperation(ctx, OperationFindByMAC, "DC1", "prod-cluster", StatusSuccess, 200*time.Millisecond)

	names := collectMetricNames(t, reader)
	if !names["mcp_vsphere_operations_total"] {
		t.Error("mcp_vsphere_operations_total should have data points")
	}
	if !names["mcp_vsphere_operation_duration_seconds"] {
		t.Error("mcp_vsphere_operation_duration_seconds should have data points")
	}
}

func TestRecordVSphereOperationLabelCardinality(t *testing.T) {
	collectAttrKeys := func(detailed bool) map[string]bool {
		meter, reader := testMeter()
		m, err := NewMetrics(meter, detailed)
		if err != nil {
			t.Fatalf("NewMetrics failed: %v", err)
		}
		m.RecordVSphereOperation(context.Background(), OperationList, "DC1", "prod-cluster", StatusSuccess, time.Millisecond)

		var rm metricdata.ResourceMetrics
		if err := reader.Collect(context.Background(), &rm); err != nil {
			t.Fatalf("Collect failed: %v", err)
		}

		keys := make(map[string]bool)
		for _, sm := range rm.ScopeMetrics {
			for _, met := range sm.Metrics {
				sum, ok := met.Data.(metricdata.Sum[int64])
				if !ok {
					continue
				}
				for _, dp := range sum.DataPoints {
					for _, attr := range dp.Attributes.ToSlice() {
						keys[string(attr.Key)] = true
					}
				}
			}
		}
		return keys
	}

	t.Run("default labels", func(t *testing.T) {
		keys := collectAttrKeys(false)
		if keys[attrDatacenter] || keys[attrCluster] {
			t.Error("datacenter/cluster labels should be absent without detailed labels")
		}
		if !keys[attrOperation] || !keys[attrStatus] {
			t.Error("operation and status labels should always be present")
		}
	})

	t.Run("detailed labels", func(t *testing.T) {
		keys := collectAttrKeys(true)
		if !keys[attrDatacenter] || !keys[attrCluster] {
			t.Error("datacenter/cluster labels should be present with detailed labels")
		}
	})
}

func TestRecordMACLookup(t *testing.T) {
	meter, reader := testMeter()
	m, err := NewMetrics(meter, false)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	ctx := context.Background()
	m.RecordMACLookup(ctx, LookupResultFound)
	m.RecordMACLookup(ctx, LookupResultNotFound)
	m.RecordMACLookup(ctx, LookupResultError)

	names := collectMetricNames(t, reader)
	if !names["mcp_vsphere_mac_lookups_total"] {
		t.Error("mcp_vsphere_mac_lookups_total should have data points")
	}
}

func TestActiveSessions(t *testing.T) {
	meter, reader := testMeter()
	m, err := NewMetrics(meter, false)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	ctx := context.Background()
	m.IncrementActiveSessions(ctx)
	m.IncrementActiveSessions(ctx)
	m.DecrementActiveSessions(ctx)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			if met.Name != "active_vcenter_sessions" {
				continue
			}
			found = true
			sum, ok := met.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("active_vcenter_sessions has unexpected data type %T", met.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			if total != 1 {
				t.Errorf("active_vcenter_sessions = %d, want 1", total)
			}
		}
	}
	if !found {
		t.Error("active_vcenter_sessions should have data points")
	}
}

func TestUninitializedMetricsDoNotPanic(t *testing.T) {
	// A zero-value Metrics is what a disabled provider hands out; every
	// recording method must be a safe no-op.
	m := &Metrics{}
	ctx := context.Background()

	m.RecordHTTPRequest(ctx, "GET", "/healthz", 200, time.Millisecond)
	m.RecordVSphereOperation(ctx, OperationCreate, "DC1", "", StatusError, time.Millisecond)
	m.RecordMACLookup(ctx, LookupResultFound)
	m.IncrementActiveSessions(ctx)
	m.DecrementActiveSessions(ctx)
}
