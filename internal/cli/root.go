package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-blog/internal/bootstrap"
)

var (
	cfgFile    string
	contentDir string
	outputDir  string
	dsn        string
	logLevel   string
	version    = "dev"

	runtime *bootstrap.Runtime
)

var rootCmd = &cobra.Command{
	Use:   "blog",
	Short: "Markdown blog engine",
	Long: `Blog turns a directory of markdown files into a published site.

Posts move through draft, published, and archived states; archiving
replaces deletion, so nothing is ever lost. The generator renders
static HTML, the preview server shows drafts live, and the linter
reports content smells without blocking anything.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("blog %s\n", version)
	},
}

// getRuntime builds the module graph on first use and memoizes it for the
// rest of the invocation. Execute closes it on the way out.
func getRuntime(cmd *cobra.Command) (*bootstrap.Runtime, error) {
	if runtime != nil {
		return runtime, nil
	}

	rt, err := bootstrap.Build(cmd.Context(), bootstrap.Options{
		ConfigPath: cfgFile,
		ContentDir: contentDir,
		OutputDir:  outputDir,
		DSN:        dsn,
		Addr:       serveAddr,
		LogLevel:   logLevel,
		Version:    version,
	})
	if err != nil {
		return nil, err
	}
	runtime = rt
	return runtime, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "blog.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&contentDir, "content-dir", "", "override the content directory")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "override the generator output directory")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "override the database connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the logging level")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
}

// SetVersion stamps the binary version reported by the version command and
// recorded against registered schemas.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command and releases the runtime afterwards.
func Execute() error {
	defer func() {
		if runtime != nil {
			runtime.Close()
			runtime = nil
		}
	}()
	return rootCmd.Execute()
}

// Root exposes the root command for documentation generators.
func Root() *cobra.Command {
	return rootCmd
}
