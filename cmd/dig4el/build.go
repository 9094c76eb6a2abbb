package main

import (
	"github.com/spf13/cobra"

	"github.com/alterfero/dig4el-sub001/pkg/graph"
	"github.com/alterfero/dig4el-sub001/pkg/loader"
	ioloader "github.com/alterfero/dig4el-sub001/pkg/loader/io"
	"github.com/alterfero/dig4el-sub001/pkg/logger"
	"github.com/alterfero/dig4el-sub001/pkg/store"
)

func newBuildCmd(c *cli) *cobra.Command {
	var (
		language       string
		questionnaires string
		recordings     string
		repair         bool
		stdout         bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the knowledge graph of one language",
		Long: `Build the knowledge graph of one language from questionnaire and
recording documents and store it as a snapshot.

Examples:
  dig4el build --language english --questionnaires cq/ --recordings rec/english/
  dig4el build --language french --questionnaires cq/ --recordings rec/fr.json --stdout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c.cfg.Repair = c.cfg.Repair || repair
			builder, err := c.cfg.Builder()
			if err != nil {
				return err
			}

			l := ioloader.NewIOSourceLoader()
			qs, err := loader.Discover(ctx, l, questionnaires, loader.SourceKindQuestionnaire)
			if err != nil {
				return err
			}
			rs, err := loader.Discover(ctx, l, recordings, loader.SourceKindRecording)
			if err != nil {
				return err
			}

			result, err := builder.BuildFromSources(ctx, language, qs, rs)
			if err != nil {
				return err
			}
			snapshot := result.Snapshot()
			if stdout {
				return writeJSON(cmd.OutOrStdout(), snapshot)
			}

			s, err := c.store()
			if err != nil {
				return err
			}
			if err := s.SaveSnapshot(ctx, snapshot); err != nil {
				return err
			}
			logger.Info("[Build] Snapshot saved", "language", language, "entries", result.Graph.Len(), "issues", len(result.Issues))

			type buildSummary struct {
				store.SnapshotInfo
				Issues      []graph.Issue           `json:"issues"`
				IssueCounts map[graph.IssueKind]int `json:"issue_counts"`
			}
			return write(cmd.OutOrStdout(), c.format, buildSummary{
				SnapshotInfo: store.Info(snapshot),
				Issues:       result.Issues,
				IssueCounts:  graph.CountIssues(result.Issues),
			})
		},
	}

	cmd.Flags().StringVar(&language, "language", "", "Target language")
	cmd.Flags().StringVar(&questionnaires, "questionnaires", "", "Questionnaire file or directory")
	cmd.Flags().StringVar(&recordings, "recordings", "", "Recording file or directory")
	cmd.Flags().BoolVar(&repair, "repair", false, "Repair malformed JSON instead of failing")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Write the snapshot to stdout instead of the snapshot directory")
	_ = cmd.MarkFlagRequired("language")
	_ = cmd.MarkFlagRequired("questionnaires")
	_ = cmd.MarkFlagRequired("recordings")
	return cmd
}

func newSnapshotsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.store()
			if err != nil {
				return err
			}
			infos, err := s.ListSnapshots(cmd.Context())
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), c.format, infos)
		},
	}
}
