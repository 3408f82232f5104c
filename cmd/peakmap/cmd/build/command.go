// Package build provides the build command.
package build

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/peakmap"
	"github.com/agentstation/peakmap/cmd/application"
	"github.com/agentstation/peakmap/internal/cmd/output"
	"github.com/agentstation/peakmap/internal/cmd/table"
	"github.com/agentstation/peakmap/internal/observability"
	"github.com/agentstation/peakmap/pkg/catalog"
	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/linkage"
	"github.com/agentstation/peakmap/pkg/save"
	"github.com/agentstation/peakmap/pkg/types"
)

// Flags holds the flags of the build command.
type Flags struct {
	Out         string
	Artifacts   []string
	SQLite      string
	MetricsFile string
	Explain     string
	DryRun      bool
}

// Summary is the machine-readable result of a build.
type Summary struct {
	Stats      catalog.Stats                 `json:"stats" yaml:"stats"`
	Linkage    map[types.SourceID]PairCounts `json:"linkage" yaml:"linkage"`
	DurationMS int64                         `json:"duration_ms" yaml:"duration_ms"`
	Saved      bool                          `json:"saved" yaml:"saved"`
}

// PairCounts are the link outcome counts of one source pair.
type PairCounts struct {
	Threshold      float64 `json:"threshold" yaml:"threshold"`
	Anchors        int     `json:"anchors" yaml:"anchors"`
	Overridden     int     `json:"overridden" yaml:"overridden"`
	Matched        int     `json:"matched" yaml:"matched"`
	Unmatched      int     `json:"unmatched" yaml:"unmatched"`
	BelowThreshold int     `json:"below_threshold" yaml:"below_threshold"`
}

func newSummary(res *peakmap.Result, saved bool) Summary {
	s := Summary{
		Stats:      res.Catalog.Stats,
		Linkage:    make(map[types.SourceID]PairCounts, len(res.Linkage)),
		DurationMS: res.Duration.Milliseconds(),
		Saved:      saved,
	}
	for target, r := range res.Linkage {
		s.Linkage[target] = PairCounts{
			Threshold:      r.Threshold,
			Anchors:        r.Anchors,
			Overridden:     r.Overridden,
			Matched:        r.Matched,
			Unmatched:      r.Unmatched,
			BelowThreshold: r.BelowThreshold,
		}
	}
	return s
}

// NewCommand creates the build command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "build",
		GroupID: "core",
		Short:   "Build the peak catalog",
		Long: `Build loads the three peak tables and the region boundaries, links
anchor peaks to survey and registry records, merges them into the catalog
and writes the outputs to the output directory.

Outputs: ref_peak.txt (catalog), ref_peak.geojson, ref_link_<pair>.txt
(link reports) and ref_region.txt, plus provenance.yaml when requested.`,
		Example: `  peakmap build --anchor hdb_peak.txt --survey osm_peak.txt --registry mot_peak.txt --regions himal.geojson
  peakmap build --out dist --sqlite dist/peakmap.db
  peakmap build --dry-run --explain AMAD`,
		Args:        cobra.NoArgs,
		Annotations: application.NeedsSources(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, flags)
		},
	}

	cmd.Flags().StringVar(&flags.Out, "out", "", "output directory (default from config, else .)")
	cmd.Flags().StringSliceVar(&flags.Artifacts, "artifacts", nil, "artifacts to write: catalog, geojson, links, regions, provenance")
	cmd.Flags().StringVar(&flags.SQLite, "sqlite", "", "also export the catalog to this SQLite database")
	cmd.Flags().StringVar(&flags.MetricsFile, "metrics-file", "", "write run metrics to this Prometheus textfile")
	cmd.Flags().StringVar(&flags.Explain, "explain", "", "print the coordinate provenance of one peak")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "build without writing outputs")

	return cmd
}

func run(cmd *cobra.Command, app application.Application, flags *Flags) error {
	ctx := cmd.Context()
	logger := app.Logger()

	saveOpts, err := flags.saveOptions()
	if err != nil {
		return err
	}

	var clientOpts []peakmap.Option
	if flags.Explain != "" || flags.wants(save.ArtifactProvenance) {
		clientOpts = append(clientOpts, peakmap.WithProvenance(true))
	}
	if flags.MetricsFile != "" {
		clientOpts = append(clientOpts, peakmap.WithMetrics(observability.NewMetrics("peakmap")))
	}

	client, err := app.Client(clientOpts...)
	if err != nil {
		return err
	}

	res, err := client.Build(ctx)
	if err != nil {
		return err
	}

	if !flags.DryRun {
		opts := append(app.SaveOptions(), saveOpts...)
		if err := client.Save(ctx, res, opts...); err != nil {
			return err
		}
	} else {
		logger.Info().Msg("Dry run, no outputs written")
	}

	out := cmd.OutOrStdout()
	if flags.Explain != "" {
		return explain(cmd, app.OutputFormat(), res, flags.Explain)
	}

	tbl := table.SummaryData(table.Summary{
		Stats:   res.Catalog.Stats,
		Linkage: []*linkage.Result{res.Linkage[types.SurveyID], res.Linkage[types.RegistryID]},
	})
	return output.Render(out, app.OutputFormat(), tbl, newSummary(res, !flags.DryRun))
}

func explain(cmd *cobra.Command, format string, res *peakmap.Result, peakID string) error {
	fields := res.Provenance.Resource(types.ResourceTypePeak, peakID)
	if len(fields) == 0 {
		return errors.NewNotFoundError("provenance for peak", peakID)
	}
	return output.Render(cmd.OutOrStdout(), format, table.Provenance(fields), fields)
}

// saveOptions converts the flags to save options. Unset flags leave the
// configured values in place.
func (f *Flags) saveOptions() ([]save.Option, error) {
	var opts []save.Option
	if f.Out != "" {
		opts = append(opts, save.WithDir(f.Out))
	}
	if len(f.Artifacts) > 0 {
		artifacts := make([]save.Artifact, 0, len(f.Artifacts))
		for _, name := range f.Artifacts {
			a := save.Artifact(name)
			if !a.IsValid() {
				return nil, &errors.ValidationError{
					Field:   "artifacts",
					Value:   name,
					Message: fmt.Sprintf("unknown artifact, must be one of %v", save.Artifacts()),
				}
			}
			artifacts = append(artifacts, a)
		}
		opts = append(opts, save.WithArtifacts(artifacts...))
	}
	if f.SQLite != "" {
		opts = append(opts, save.WithSQLite(f.SQLite))
	}
	if f.MetricsFile != "" {
		opts = append(opts, save.WithMetricsFile(f.MetricsFile))
	}
	return opts, nil
}

func (f *Flags) wants(a save.Artifact) bool {
	for _, name := range f.Artifacts {
		if save.Artifact(name) == a {
			return true
		}
	}
	return false
}
