package vm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-vsphere/internal/instrumentation"
	"github.com/giantswarm/mcp-vsphere/internal/logging"
	"github.com/giantswarm/mcp-vsphere/internal/server"
	"github.com/giantswarm/mcp-vsphere/internal/tools"
	"github.com/giantswarm/mcp-vsphere/internal/vsphere"
)

// withConnection dials a scoped vCenter session, runs fn, and releases the
// session before returning. The session never outlives the tool call.
func withConnection(ctx context.Context, sc *server.ServerContext, fn func(conn vsphere.Connection) (*mcp.CallToolResult, error)) (*mcp.CallToolResult, error) {
	conn, err := sc.Dialer().Dial(ctx)
	if err != nil {
		return tools.ErrorResult(err), nil
	}
	defer func() {
		if cerr := conn.Close(ctx); cerr != nil {
			sc.Logger().Warn("failed to close vCenter session", logging.SanitizedErr(cerr))
		}
	}()

	return fn(conn)
}

// jsonResult marshals v as indented JSON into a tool text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleFindVMByMAC resolves a MAC address to the VM that owns it.
func handleFindVMByMAC(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	mac, ok := args["mac_address"].(string)
	if !ok || mac == "" {
		return mcp.NewToolResultError("mac_address is required"), nil
	}

	locator := sc.Locator()
	if locator == nil {
		locator = vsphere.NewLocator(sc.Dialer(), nil)
	}

	result, err := locator.FindByMAC(ctx, mac)
	if err != nil {
		switch {
		case vsphere.IsNotFound(err):
			sc.Metrics().RecordMACLookup(ctx, instrumentation.LookupResultNotFound)
		case vsphere.IsInvalidInput(err):
			// Invalid input never reached vCenter, don't count it as a lookup.
		default:
			sc.Metrics().RecordMACLookup(ctx, instrumentation.LookupResultError)
		}
		return tools.ErrorResult(err), nil
	}

	sc.Metrics().RecordMACLookup(ctx, instrumentation.LookupResultFound)
	return jsonResult(result)
}

// handleListVMs returns the full VM inventory.
func handleListVMs(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	return withConnection(ctx, sc, func(conn vsphere.Connection) (*mcp.CallToolResult, error) {
		vms, err := conn.ListVirtualMachines(ctx)
		if err != nil {
			return tools.ErrorResult(err), nil
		}
		return jsonResult(vms)
	})
}

// handleCreateVM creates a new virtual machine.
func handleCreateVM(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if blocked := tools.CheckMutatingOperation(sc, "create"); blocked != nil {
		return blocked, nil
	}

	args := request.GetArguments()

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	cpusFloat, ok := args["cpus"].(float64)
	if !ok || cpusFloat < 1 {
		return mcp.NewToolResultError("cpus must be a positive number"), nil
	}

	memoryFloat, ok := args["memory_mb"].(float64)
	if !ok || memoryFloat < 1 {
		return mcp.NewToolResultError("memory_mb must be a positive number"), nil
	}

	datastore, _ := args["datastore"].(string)
	network, _ := args["network"].(string)

	req := vsphere.CreateVMRequest{
		Name:      name,
		CPUs:      int32(cpusFloat),
		MemoryMB:  int64(memoryFloat),
		Datastore: datastore,
		Network:   network,
	}

	if sc.Config().DryRun {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Dry-run: VM %q would be created with %d CPUs and %d MiB memory.", req.Name, req.CPUs, req.MemoryMB)), nil
	}

	return withConnection(ctx, sc, func(conn vsphere.Connection) (*mcp.CallToolResult, error) {
		if err := conn.CreateVM(ctx, req); err != nil {
			return tools.ErrorResult(err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"VM %q created with %d CPUs and %d MiB memory.", req.Name, req.CPUs, req.MemoryMB)), nil
	})
}

// handleCloneVM clones an existing VM or template.
func handleCloneVM(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if blocked := tools.CheckMutatingOperation(sc, "clone"); blocked != nil {
		return blocked, nil
	}

	args := request.GetArguments()

	source, ok := args["source"].(string)
	if !ok || source == "" {
		return mcp.NewToolResultError("source is required"), nil
	}

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	if sc.Config().DryRun {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Dry-run: VM %q would be cloned from %q.", name, source)), nil
	}

	return withConnection(ctx, sc, func(conn vsphere.Connection) (*mcp.CallToolResult, error) {
		if err := conn.CloneVM(ctx, source, name); err != nil {
			return tools.ErrorResult(err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"VM %q cloned from %q. The clone is powered off.", name, source)), nil
	})
}

// handleDeleteVM deletes a virtual machine.
func handleDeleteVM(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if blocked := tools.CheckMutatingOperation(sc, "delete"); blocked != nil {
		return blocked, nil
	}

	args := request.GetArguments()

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	if sc.Config().DryRun {
		return mcp.NewToolResultText(fmt.Sprintf("Dry-run: VM %q would be deleted.", name)), nil
	}

	return withConnection(ctx, sc, func(conn vsphere.Connection) (*mcp.CallToolResult, error) {
		if err := conn.DeleteVM(ctx, name); err != nil {
			return tools.ErrorResult(err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("VM %q deleted.", name)), nil
	})
}

// handlePowerOn powers on a virtual machine.
func handlePowerOn(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if blocked := tools.CheckMutatingOperation(sc, "power-on"); blocked != nil {
		return blocked, nil
	}
	return handlePowerTransition(ctx, request, sc, true)
}

// handlePowerOff powers off a virtual machine.
func handlePowerOff(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if blocked := tools.CheckMutatingOperation(sc, "power-off"); blocked != nil {
		return blocked, nil
	}
	return handlePowerTransition(ctx, request, sc, false)
}

func handlePowerTransition(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, on bool) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	state := "off"
	if on {
		state = "on"
	}

	if sc.Config().DryRun {
		return mcp.NewToolResultText(fmt.Sprintf("Dry-run: VM %q would be powered %s.", name, state)), nil
	}

	return withConnection(ctx, sc, func(conn vsphere.Connection) (*mcp.CallToolResult, error) {
		var (
			changed bool
			err     error
		)
		if on {
			changed, err = conn.PowerOn(ctx, name)
		} else {
			changed, err = conn.PowerOff(ctx, name)
		}
		if err != nil {
			return tools.ErrorResult(err), nil
		}
		if !changed {
			return mcp.NewToolResultText(fmt.Sprintf("VM %q is already powered %s.", name, state)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("VM %q powered %s.", name, state)), nil
	})
}

// handleVMStats reads usage statistics for a virtual machine.
func handleVMStats(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	return withConnection(ctx, sc, func(conn vsphere.Connection) (*mcp.CallToolResult, error) {
		stats, err := conn.VMStats(ctx, name)
		if err != nil {
			return tools.ErrorResult(err), nil
		}
		return jsonResult(stats)
	})
}
