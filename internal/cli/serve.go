package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the preview server",
	Long: `Serve drafts and published posts over HTTP with live reload. The
preview renders straight from the store and content directory, so
edits show up without a rebuild. Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := getRuntime(cmd)
		if err != nil {
			return err
		}

		server, err := rt.Module.Preview()
		if err != nil {
			return fmt.Errorf("preview unavailable: %w", err)
		}

		fmt.Printf("Preview serving on %s. Ctrl-C to stop.\n", rt.Config.Preview.Addr)
		return server.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address override, e.g. :3000")
}
