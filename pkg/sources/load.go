package sources

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/peakmap/pkg/dsv"
	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/logging"
	"github.com/agentstation/peakmap/pkg/types"
)

// Paths locates the three source tables.
type Paths struct {
	Anchor   string `json:"anchor" yaml:"anchor" validate:"required"`
	Survey   string `json:"survey" yaml:"survey" validate:"required"`
	Registry string `json:"registry" yaml:"registry" validate:"required"`
}

// For returns the table path of a source.
func (p Paths) For(id types.SourceID) string {
	switch id {
	case types.AnchorID:
		return p.Anchor
	case types.SurveyID:
		return p.Survey
	case types.RegistryID:
		return p.Registry
	}
	return ""
}

// Tables holds the adapted source tables.
type Tables struct {
	Anchors  Anchors
	Survey   *Secondary
	Registry *Secondary
}

// Secondary returns the table of a linked source.
func (t *Tables) Secondary(id types.SourceID) *Secondary {
	switch id {
	case types.SurveyID:
		return t.Survey
	case types.RegistryID:
		return t.Registry
	}
	return nil
}

// Load reads and adapts the three tables concurrently. Any missing or
// unreadable table fails the load with a SourceError.
func Load(ctx context.Context, paths Paths) (*Tables, error) {
	ctx = logging.WithOperation(ctx, "load")
	tables := &Tables{}

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range types.SourceIDs() {
		id := id
		s, _ := SchemaFor(id)
		path := paths.For(id)
		g.Go(func() error {
			t, err := read(gctx, s, path)
			if err != nil {
				return err
			}
			switch id {
			case types.AnchorID:
				tables.Anchors, err = ReadAnchors(gctx, t)
			case types.SurveyID:
				tables.Survey, err = ReadSecondary(gctx, t, s)
			case types.RegistryID:
				tables.Registry, err = ReadSecondary(gctx, t, s)
			}
			return errors.WrapSource(id.String(), path, err)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info().
		Int("anchor", len(tables.Anchors)).
		Int("survey", tables.Survey.Len()).
		Int("registry", tables.Registry.Len()).
		Msg("Loaded source tables")

	return tables, nil
}

func read(ctx context.Context, s Schema, path string) (*dsv.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapCanceled("load "+s.Source.String(), err)
	}
	if path == "" {
		return nil, errors.NewSourceError(s.Source.String(), path, errors.New("no path configured"))
	}
	t, err := dsv.ReadFile(path)
	if err != nil {
		return nil, errors.WrapSource(s.Source.String(), path, err)
	}
	return t, nil
}
