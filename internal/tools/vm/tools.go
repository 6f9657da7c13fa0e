package vm

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-vsphere/internal/instrumentation"
	"github.com/giantswarm/mcp-vsphere/internal/server"
	"github.com/giantswarm/mcp-vsphere/internal/tools"
)

// RegisterVMTools registers all virtual machine tools with the MCP server
func RegisterVMTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// vsphere_find_vm_by_mac tool
	findTool := mcp.NewTool("vsphere_find_vm_by_mac",
		mcp.WithDescription("Find the virtual machine that owns a given MAC address. Returns the VM name, datacenter, and cluster."),
		mcp.WithString("mac_address",
			mcp.Required(),
			mcp.Description("MAC address to look up. Colons, dashes, dots, and case are accepted (e.g. 00:50:56:aa:bb:cc or 00-50-56-AA-BB-CC)"),
		),
	)
	s.AddTool(findTool, tools.WrapWithInstrumentation(
		"vsphere_find_vm_by_mac", instrumentation.OperationFindByMAC, handleFindVMByMAC, sc))

	// vsphere_list_vms tool
	listTool := mcp.NewTool("vsphere_list_vms",
		mcp.WithDescription("List all virtual machines in the vCenter inventory with their MAC addresses, placement, and power state"),
	)
	s.AddTool(listTool, tools.WrapWithInstrumentation(
		"vsphere_list_vms", instrumentation.OperationList, handleListVMs, sc))

	// vsphere_create_vm tool
	createTool := mcp.NewTool("vsphere_create_vm",
		mcp.WithDescription("Create a new virtual machine using the configured placement defaults"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the virtual machine to create"),
		),
		mcp.WithNumber("cpus",
			mcp.Required(),
			mcp.Description("Number of virtual CPUs"),
		),
		mcp.WithNumber("memory_mb",
			mcp.Required(),
			mcp.Description("Memory size in MiB"),
		),
		mcp.WithString("datastore",
			mcp.Description("Datastore to place the VM on (optional, overrides the configured default)"),
		),
		mcp.WithString("network",
			mcp.Description("Network to attach the VM to (optional, overrides the configured default)"),
		),
	)
	s.AddTool(createTool, tools.WrapWithInstrumentation(
		"vsphere_create_vm", instrumentation.OperationCreate, handleCreateVM, sc))

	// vsphere_clone_vm tool
	cloneTool := mcp.NewTool("vsphere_clone_vm",
		mcp.WithDescription("Clone an existing virtual machine or template into a new powered-off VM"),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Name of the VM or template to clone from"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the new virtual machine"),
		),
	)
	s.AddTool(cloneTool, tools.WrapWithInstrumentation(
		"vsphere_clone_vm", instrumentation.OperationClone, handleCloneVM, sc))

	// vsphere_delete_vm tool
	deleteTool := mcp.NewTool("vsphere_delete_vm",
		mcp.WithDescription("Delete a virtual machine from the inventory and destroy its files"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the virtual machine to delete"),
		),
	)
	s.AddTool(deleteTool, tools.WrapWithInstrumentation(
		"vsphere_delete_vm", instrumentation.OperationDelete, handleDeleteVM, sc))

	// vsphere_power_on tool
	powerOnTool := mcp.NewTool("vsphere_power_on",
		mcp.WithDescription("Power on a virtual machine. Succeeds without change if the VM is already powered on"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the virtual machine to power on"),
		),
	)
	s.AddTool(powerOnTool, tools.WrapWithInstrumentation(
		"vsphere_power_on", instrumentation.OperationPowerOn, handlePowerOn, sc))

	// vsphere_power_off tool
	powerOffTool := mcp.NewTool("vsphere_power_off",
		mcp.WithDescription("Power off a virtual machine. Succeeds without change if the VM is already powered off"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the virtual machine to power off"),
		),
	)
	s.AddTool(powerOffTool, tools.WrapWithInstrumentation(
		"vsphere_power_off", instrumentation.OperationPowerOff, handlePowerOff, sc))

	// vsphere_vm_stats tool
	statsTool := mcp.NewTool("vsphere_vm_stats",
		mcp.WithDescription("Get CPU, memory, storage, and network usage statistics for a virtual machine"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the virtual machine to read statistics from"),
		),
	)
	s.AddTool(statsTool, tools.WrapWithInstrumentation(
		"vsphere_vm_stats", instrumentation.OperationStats, handleVMStats, sc))

	return nil
}
