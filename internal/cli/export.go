package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	staticcmd "github.com/goliatone/go-blog/internal/commands/static"
	"github.com/goliatone/go-blog/internal/export"
)

var (
	exportName  string
	exportForce bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Package the generated site into an archive",
	Long: `Compress the output directory into a portable tar.gz for deployment.
The export refuses a dirty output directory unless --force: run build
first so the archive matches the store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := getRuntime(cmd)
		if err != nil {
			return err
		}

		var result *export.Result
		handler := staticcmd.NewExportSiteHandler(rt.Module.Exporter(), rt.Logger, exportGates())
		msg := staticcmd.ExportSiteCommand{
			Name:  exportName,
			Force: exportForce,
			ExportCallback: func(r *export.Result) {
				result = r
			},
		}
		if err := handler.Execute(cmd.Context(), msg); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if result == nil {
			fmt.Println("Export produced no archive.")
			return nil
		}
		fmt.Printf("Exported %d file(s) (%d bytes) to %s.\n", result.Files, result.ArchiveSize, result.ArchivePath)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportName, "name", "", "archive base name, defaulting to the site title")
	exportCmd.Flags().BoolVar(&exportForce, "force", false, "package even when output disagrees with its manifest")
}
