package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alterfero/dig4el-sub001/pkg/loader"
	"github.com/alterfero/dig4el-sub001/pkg/order"
	"github.com/alterfero/dig4el-sub001/pkg/stats"
)

func newOrdersCmd(c *cli) *cobra.Command {
	var canonical, normalize, agentReady bool

	cmd := &cobra.Command{
		Use:   "orders <language> <observer>",
		Short: "Classify word order in a stored snapshot",
		Long: fmt.Sprintf(`Run a word-order observer over a stored snapshot.

Observers: %s

Examples:
  dig4el orders english sov --canonical
  dig4el orders french adjective-noun --normalize --format=human`, strings.Join(order.ObserverNames(), ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			obs, err := order.ByName(args[1], normalize || c.cfg.NormalizeUnresolved)
			if err != nil {
				return err
			}
			s, err := c.store()
			if err != nil {
				return err
			}
			snap, err := s.LoadSnapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			resolver := c.cfg.Table().Resolver(snap.Language)
			result := order.Observe(snap.Graph, obs, resolver, c.cfg.Elements(), canonical)
			if agentReady {
				return writeJSON(cmd.OutOrStdout(), result.AgentReady())
			}
			return write(cmd.OutOrStdout(), c.format, result)
		},
	}

	cmd.Flags().BoolVar(&canonical, "canonical", false, "Keep only assertive entries")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "Count unresolved adjective/noun pairs as no dominant order")
	cmd.Flags().BoolVar(&agentReady, "agent-ready", false, "Print counts keyed by domain-element id")
	return cmd
}

func newFeaturesCmd(c *cli) *cobra.Command {
	var focus string

	cmd := &cobra.Command{
		Use:   "features <language> <feature>",
		Short: "Locate feature values and compare word frequencies",
		Long: `Group the entries of a snapshot by the values of a feature. With --focus
the per-mille word frequency of the focus value is compared against all
other values.

Examples:
  dig4el features english INTENT
  dig4el features english "PERSONAL DEICTIC" --focus "SPEAKER AGENT"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.store()
			if err != nil {
				return err
			}
			snap, err := s.LoadSnapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			feature, _ := c.cfg.Catalog().Lookup(args[1])
			locations := stats.ValueLocationsFor(snap.Graph, feature)
			if focus == "" {
				return write(cmd.OutOrStdout(), c.format, locations)
			}
			if !slices.Contains(locations.Buckets(), focus) {
				return fmt.Errorf("unknown value %q for feature %s, have %v", focus, feature.Name, locations.Buckets())
			}
			resolver := c.cfg.Table().Resolver(snap.Language)
			return write(cmd.OutOrStdout(), c.format, stats.FrequencyDifferential(snap.Graph, locations, focus, resolver))
		},
	}

	cmd.Flags().StringVar(&focus, "focus", "", "Feature value to compare against the rest")
	return cmd
}

func newSchemaCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:       "schema <questionnaire|recording>",
		Short:     "Print the JSON schema of an input document",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(loader.SourceKindQuestionnaire), string(loader.SourceKindRecording)},
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := loader.Schema(loader.SourceKind(args[0]))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), schema)
		},
	}
}
