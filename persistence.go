package peakmap

import (
	"context"
	"os"
	"path/filepath"

	"github.com/agentstation/peakmap/internal/store/sqlite"
	"github.com/agentstation/peakmap/pkg/catalog"
	"github.com/agentstation/peakmap/pkg/constants"
	"github.com/agentstation/peakmap/pkg/dsv"
	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/linkage"
	"github.com/agentstation/peakmap/pkg/logging"
	"github.com/agentstation/peakmap/pkg/provenance"
	"github.com/agentstation/peakmap/pkg/regions"
	"github.com/agentstation/peakmap/pkg/save"
	"github.com/agentstation/peakmap/pkg/types"
)

// Compile-time interface check to ensure proper implementation.
var _ Persistence = (*client)(nil)

// Persistence writes build results.
type Persistence interface {
	// Save with options
	Save(ctx context.Context, res *Result, opts ...save.Option) error
}

// Save writes the selected artifacts of res to the output directory, then
// the optional SQLite export and metrics textfile.
func (c *client) Save(ctx context.Context, res *Result, opts ...save.Option) error {
	if res == nil || res.Catalog == nil {
		return &errors.ValidationError{Field: "result", Message: "nothing to save"}
	}
	o := save.Defaults().Apply(opts...)
	logger := logging.FromContext(ctx)

	if err := os.MkdirAll(o.Dir(), constants.DirPermissions); err != nil {
		return errors.WrapIO("mkdir", o.Dir(), err)
	}
	path := func(name string) string { return filepath.Join(o.Dir(), name) }

	if o.Wants(save.ArtifactCatalog) {
		if err := catalog.WriteFile(path(save.CatalogFile), res.Catalog.Peaks); err != nil {
			return err
		}
	}
	if o.Wants(save.ArtifactGeoJSON) {
		if err := catalog.WriteGeoJSON(path(save.GeoJSONFile), res.Catalog.Peaks); err != nil {
			return err
		}
	}
	if o.Wants(save.ArtifactLinks) {
		for _, target := range types.TargetIDs() {
			links, ok := res.Links[target]
			if !ok {
				continue
			}
			if err := dsv.WriteFile(path(save.LinksFile(target.String())), linkage.ReportHeader, links.Report()); err != nil {
				return err
			}
		}
	}
	if o.Wants(save.ArtifactRegions) && res.Regions != nil {
		if err := dsv.WriteFile(path(save.RegionsFile), regions.TableHeader, res.Regions.Table()); err != nil {
			return err
		}
	}
	if o.Wants(save.ArtifactProvenance) {
		if res.Provenance == nil {
			logger.Warn().Msg("Provenance tracking was off, skipping provenance file")
		} else if err := provenance.Save(path(save.ProvenanceFile), res.Provenance); err != nil {
			return err
		}
	}

	if p := o.SQLitePath(); p != "" {
		if err := exportSQLite(ctx, p, res); err != nil {
			return err
		}
	}
	if p := o.MetricsPath(); p != "" {
		if c.options.metrics == nil {
			logger.Warn().Msg("Metrics were not collected, skipping metrics file")
		} else if err := c.options.metrics.WriteTextfile(p); err != nil {
			return err
		}
	}

	logger.Info().Str("dir", o.Dir()).Msg("Saved build results")
	return nil
}

func exportSQLite(ctx context.Context, path string, res *Result) error {
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.WritePeaks(ctx, res.Catalog.Peaks); err != nil {
		return err
	}
	if err := store.WriteRegions(ctx, res.Regions.Regions()); err != nil {
		return err
	}
	for _, target := range types.TargetIDs() {
		if err := store.WriteLinks(ctx, target.String(), res.Links[target]); err != nil {
			return err
		}
	}
	return nil
}
