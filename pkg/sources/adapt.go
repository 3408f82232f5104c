package sources

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/peakmap/pkg/dsv"
	"github.com/agentstation/peakmap/pkg/logging"
)

// ReadAnchors adapts the anchor table. Rows without an id are skipped with
// a warning; every other row is kept, even when it has no usable name. A
// repeated id replaces the earlier row in place.
func ReadAnchors(ctx context.Context, t *dsv.Table) (Anchors, error) {
	s := AnchorSchema
	if err := t.Require(s.ID, s.Names[0]); err != nil {
		return nil, err
	}
	logger := logging.FromContext(logging.WithSource(ctx, s.Source.String()))
	logSkipped(logger, t)

	out := make(Anchors, 0, len(t.Rows))
	byID := make(map[string]int, len(t.Rows))
	for _, row := range t.Rows {
		id, ok := row.Get(s.ID)
		if !ok {
			logger.Warn().Int("line", row.Line).Msg("Skipping row without id")
			continue
		}
		a := Anchor{
			ID:       strings.TrimSpace(id),
			Name:     strings.TrimSpace(row.Value(s.Names[0])),
			AltName:  row.Value(s.Names[1]),
			Height:   strings.TrimSpace(row.Value(ColumnHeight)),
			Location: row.Value(ColumnLocation),
			Line:     row.Line,
		}
		if i, dup := byID[a.ID]; dup {
			logger.Warn().
				Str("id", a.ID).
				Int("line", row.Line).
				Int("replaces", out[i].Line).
				Msg("Duplicate id, later row wins")
			out[i] = a
			continue
		}
		byID[a.ID] = len(out)
		out = append(out, a)
	}

	logger.Debug().Int("peaks", len(out)).Msg("Adapted anchor table")
	return out, nil
}

// ReadSecondary adapts a survey or registry table. Unparseable or
// out-of-range coordinates leave the peak without coordinates.
func ReadSecondary(ctx context.Context, t *dsv.Table, s Schema) (*Secondary, error) {
	if err := t.Require(s.ID); err != nil {
		return nil, err
	}
	logger := logging.FromContext(logging.WithSource(ctx, s.Source.String()))
	logSkipped(logger, t)
	if !t.Has(ColumnLongitude, ColumnLatitude) {
		logger.Warn().Str("table", t.Name).Msg("Table has no coordinate columns")
	}

	peaks := make([]Peak, 0, len(t.Rows))
	for _, row := range t.Rows {
		id, ok := row.Get(s.ID)
		if !ok {
			logger.Warn().Int("line", row.Line).Msg("Skipping row without id")
			continue
		}
		p := Peak{
			Source: s.Source,
			ID:     strings.TrimSpace(id),
			Line:   row.Line,
		}
		if len(s.Names) > 0 {
			p.Name = row.Value(s.Names[0])
		}
		if len(s.Names) > 1 {
			p.AltNames = row.Value(s.Names[1])
		}

		coords, err := parseCoordinates(row)
		if err != nil {
			logger.Debug().
				Str("id", p.ID).
				Int("line", row.Line).
				Err(err).
				Msg("Ignoring coordinates")
		}
		p.Coordinates = coords
		peaks = append(peaks, p)
	}

	sec := NewSecondary(s.Source, peaks)
	if dups := len(peaks) - sec.Len(); dups > 0 {
		logger.Warn().Int("duplicates", dups).Msg("Duplicate ids, later rows win")
	}
	logger.Debug().Int("peaks", sec.Len()).Msg("Adapted table")
	return sec, nil
}

func parseCoordinates(row dsv.Row) (*Coordinates, error) {
	lonStr, ok := row.Get(ColumnLongitude)
	if !ok {
		return nil, nil
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return nil, err
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(row.Value(ColumnLatitude)), 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(lon) || math.IsNaN(lat) || math.Abs(lon) > 180 || math.Abs(lat) > 90 {
		return nil, strconv.ErrRange
	}
	return &Coordinates{
		Longitude:    lon,
		Latitude:     lat,
		DMSLongitude: row.Value(ColumnDMSLongitude),
		DMSLatitude:  row.Value(ColumnDMSLatitude),
	}, nil
}

func logSkipped(logger *zerolog.Logger, t *dsv.Table) {
	for _, skip := range t.Skipped {
		logger.Warn().
			Str("table", t.Name).
			Int("line", skip.Line).
			Str("reason", skip.Reason).
			Msg("Skipped malformed row")
	}
}
