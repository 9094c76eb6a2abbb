package main

import (
	"github.com/spf13/cobra"

	"github.com/alterfero/dig4el-sub001/internal/config"
	"github.com/alterfero/dig4el-sub001/internal/util"
	"github.com/alterfero/dig4el-sub001/pkg/logger"
	"github.com/alterfero/dig4el-sub001/pkg/logger/console"
	"github.com/alterfero/dig4el-sub001/pkg/store/file"
)

// cli holds the state shared by all subcommands.
type cli struct {
	configPath  string
	snapshotDir string
	debug       bool
	format      string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:   "dig4el",
		Short: "Build dig4el knowledge graphs and classify word order",
		Long: `dig4el joins conversational questionnaires with their recorded translations
into a per-language knowledge graph, and reads word-order and feature
statistics off that graph.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
				Debug:  c.debug,
				Output: cmd.ErrOrStderr(),
			}))
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.configPath, "config", util.GetEnvString("CONFIG_FILE", "dig4el.yaml"), "Analysis config file")
	flags.StringVar(&c.snapshotDir, "snapshots", util.GetEnvString("SNAPSHOT_DIR", "data/snapshots"), "Snapshot directory")
	flags.BoolVar(&c.debug, "debug", util.GetEnvBool("DEBUG", false), "Enable debug logging")
	flags.StringVar(&c.format, "format", "json", "Output format (json, human)")

	rootCmd.AddCommand(
		newBuildCmd(c),
		newSnapshotsCmd(c),
		newOrdersCmd(c),
		newFeaturesCmd(c),
		newSchemaCmd(c),
	)
	return rootCmd
}

func (c *cli) store() (*file.SnapshotFileStorage, error) {
	return file.NewSnapshotFileStorage(c.snapshotDir)
}
