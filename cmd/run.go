package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fleetward/osrecon/internal/criteria"
	"github.com/fleetward/osrecon/internal/osrecon"
)

var criteriaInput = &criteria.Input{}

// runCmd executes one reconciliation batch. Every selection flag is
// optional; with none supplied the whole fleet is reconciled.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile device software associations against observed OS versions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		return osrecon.Run(ctx, args, criteriaInput)
	},
	SilenceUsage: true,
}

// signalContext cancels the run context on a termination signal.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-termChan
		cancel()
	}()

	return ctx, cancel
}

func init() {
	flags := runCmd.Flags()

	flags.StringSliceVar(&criteriaInput.TenantGroups, "tenant-group", nil, "select devices by tenant group id")
	flags.StringSliceVar(&criteriaInput.Tenants, "tenant", nil, "select devices by tenant id")
	flags.StringSliceVar(&criteriaInput.Locations, "location", nil, "select devices by location id")
	flags.StringSliceVar(&criteriaInput.RackGroups, "rack-group", nil, "select devices by rack group id")
	flags.StringSliceVar(&criteriaInput.Racks, "rack", nil, "select devices by rack id")
	flags.StringSliceVar(&criteriaInput.Roles, "role", nil, "select devices by role id")
	flags.StringSliceVar(&criteriaInput.Manufacturers, "manufacturer", nil, "select devices by manufacturer id")
	flags.StringSliceVar(&criteriaInput.Platforms, "platform", nil, "select devices by platform id")
	flags.StringSliceVar(&criteriaInput.DeviceTypes, "device-type", nil, "select devices by device type id")
	flags.StringSliceVar(&criteriaInput.Devices, "device", nil, "select devices by device id")
	flags.StringSliceVar(&criteriaInput.Tags, "tag", nil, "select devices by tag name")
	flags.StringSliceVar(&criteriaInput.Statuses, "status", nil, "select devices by status name")

	rootCmd.AddCommand(runCmd)
}
