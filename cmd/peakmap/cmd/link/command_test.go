package link

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/peakmap"
	"github.com/agentstation/peakmap/cmd/application"
	"github.com/agentstation/peakmap/internal/fixtures"
	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/linkage"
)

func newApp(fx fixtures.Files, format string) *application.Mock {
	return &application.Mock{
		ClientFunc: func(opts ...peakmap.Option) (peakmap.Client, error) {
			return peakmap.New(append([]peakmap.Option{peakmap.WithSources(fx.Paths)}, opts...)...)
		},
		OutputFormatFunc: func() string { return format },
	}
}

func execute(t *testing.T, app application.Application, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return &out, cmd.ExecuteContext(context.Background())
}

func targets(links []linkage.Link) map[string]string {
	m := make(map[string]string, len(links))
	for _, l := range links {
		if l.TargetID != "" {
			m[l.SourceID] = l.TargetID
		}
	}
	return m
}

func TestLinkCommand_Survey(t *testing.T) {
	fx := fixtures.Write(t)

	out, err := execute(t, newApp(fx, "json"), "survey")
	require.NoError(t, err)

	var links []linkage.Link
	require.NoError(t, json.Unmarshal(out.Bytes(), &links))
	got := targets(links)
	assert.Equal(t, "S1", got["KANG"])
	assert.Equal(t, "S2", got["AMAD"])
	assert.NotContains(t, got, "RANI")
}

func TestLinkCommand_RegistryReport(t *testing.T) {
	fx := fixtures.Write(t)
	report := filepath.Join(fx.Dir, "ref_link_registry.txt")

	out, err := execute(t, newApp(fx, "table"), "registry", "--report", report)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "RANI")
	assert.Contains(t, out.String(), "119")

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, strings.Join(linkage.ReportHeader, "|"), lines[0])
	assert.Contains(t, string(data), "RANI|119")
}

func TestLinkCommand_Unmatched(t *testing.T) {
	fx := fixtures.Write(t)

	out, err := execute(t, newApp(fx, "json"), "survey", "--unmatched")
	require.NoError(t, err)

	var misses []Miss
	require.NoError(t, json.Unmarshal(out.Bytes(), &misses))
	require.Len(t, misses, 1)
	assert.Equal(t, "RANI", misses[0].PeakID)
}

func TestLinkCommand_ThresholdFlag(t *testing.T) {
	fx := fixtures.Write(t)

	out, err := execute(t, newApp(fx, "json"), "registry", "--threshold", "1", "--unmatched")
	require.NoError(t, err)

	var misses []Miss
	require.NoError(t, json.Unmarshal(out.Bytes(), &misses))
	ids := make([]string, 0, len(misses))
	for _, m := range misses {
		ids = append(ids, m.PeakID)
	}
	assert.Contains(t, ids, "KANG")
	assert.NotContains(t, ids, "RANI")
}

func TestLinkCommand_InvalidTarget(t *testing.T) {
	fx := fixtures.Write(t)

	_, err := execute(t, newApp(fx, "json"), "anchor")
	var vErr *errors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "target", vErr.Field)
}

func TestLinkCommand_InvalidThreshold(t *testing.T) {
	fx := fixtures.Write(t)

	_, err := execute(t, newApp(fx, "json"), "survey", "--threshold", "2")
	assert.True(t, errors.IsValidationError(err))
}
