package commands

import (
	"stackscrape/internal/components/telemetry"
	"stackscrape/internal/service"
	"stackscrape/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the REST API until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		telemetry.InstrumentPerfStats(ctx)

		client, err := newClient()
		if err != nil {
			return err
		}
		svc := service.NewService(client)
		return serviceutil.StartHttpServer(ctx, cfg.Addr(), svc.Handler())
	},
}
