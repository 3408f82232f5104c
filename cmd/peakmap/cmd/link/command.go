// Package link provides the link command.
package link

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/peakmap"
	"github.com/agentstation/peakmap/cmd/application"
	"github.com/agentstation/peakmap/internal/cmd/output"
	"github.com/agentstation/peakmap/internal/cmd/table"
	"github.com/agentstation/peakmap/pkg/dsv"
	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/linkage"
	"github.com/agentstation/peakmap/pkg/types"
)

// Flags holds the flags of the link command.
type Flags struct {
	Threshold float64
	Report    string
	Unmatched bool
}

// NewCommand creates the link command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "link <survey|registry>",
		GroupID: "core",
		Short:   "Link anchor peaks to one source",
		Long: `Link resolves the anchor peaks against the survey or registry table and
prints the links ordered by anchor peak id. Manual overrides always win;
computed links need a similarity of at least the pair threshold.`,
		Example: `  peakmap link survey
  peakmap link registry --threshold 0.75 --report out/ref_link_registry.txt
  peakmap link survey --unmatched -o json`,
		Args:        cobra.ExactArgs(1),
		ValidArgs:   []string{types.SurveyID.String(), types.RegistryID.String()},
		Annotations: application.NeedsSources(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, flags, types.SourceID(args[0]))
		},
	}

	cmd.Flags().Float64Var(&flags.Threshold, "threshold", 0, "lowest accepted similarity (default from config)")
	cmd.Flags().StringVar(&flags.Report, "report", "", "also write the link report table to this file")
	cmd.Flags().BoolVar(&flags.Unmatched, "unmatched", false, "list anchor peaks without an accepted link instead")

	return cmd
}

func run(cmd *cobra.Command, app application.Application, flags *Flags, target types.SourceID) error {
	if target != types.SurveyID && target != types.RegistryID {
		return &errors.ValidationError{
			Field:   "target",
			Value:   target,
			Message: fmt.Sprintf("must be %s or %s", types.SurveyID, types.RegistryID),
		}
	}

	var opts []peakmap.Option
	if cmd.Flags().Changed("threshold") {
		opts = append(opts, peakmap.WithThreshold(target, flags.Threshold))
	}
	client, err := app.Client(opts...)
	if err != nil {
		return err
	}

	links, result, err := client.Link(cmd.Context(), target)
	if err != nil {
		return err
	}

	if flags.Report != "" {
		if err := dsv.WriteFile(flags.Report, linkage.ReportHeader, links.Report()); err != nil {
			return err
		}
		app.Logger().Info().Str("file", flags.Report).Msg("Wrote link report")
	}

	if flags.Unmatched {
		rows := unmatched(result)
		return output.Render(cmd.OutOrStdout(), app.OutputFormat(), unmatchedTable(rows), rows)
	}
	return output.Render(cmd.OutOrStdout(), app.OutputFormat(), table.Links(links), links.Sorted())
}

// Miss is an anchor peak without an accepted link.
type Miss struct {
	PeakID     string  `json:"peak_id" yaml:"peak_id"`
	Candidate  string  `json:"candidate,omitempty" yaml:"candidate,omitempty"`
	Similarity float64 `json:"similarity,omitempty" yaml:"similarity,omitempty"`
}

func unmatched(result *linkage.Result) []Miss {
	var out []Miss
	for _, d := range result.Decisions {
		if d.Accepted {
			continue
		}
		m := Miss{PeakID: d.SourceID}
		if d.Best != nil {
			m.Candidate = d.Best.TargetID
			m.Similarity = d.Best.Similarity
		}
		out = append(out, m)
	}
	return out
}

func unmatchedTable(misses []Miss) table.Data {
	rows := make([][]string, 0, len(misses))
	for _, m := range misses {
		candidate, sim := "-", "-"
		if m.Candidate != "" {
			candidate, sim = m.Candidate, fmt.Sprintf("%.4f", m.Similarity)
		}
		rows = append(rows, []string{m.PeakID, candidate, sim})
	}
	return table.Data{
		Headers:         []string{"Peak", "Best Candidate", "Similarity"},
		Rows:            rows,
		ColumnAlignment: []table.Align{table.AlignLeft, table.AlignLeft, table.AlignRight},
	}
}
