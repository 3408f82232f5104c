package names_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/names"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw       string
		wantName  string
		wantTitle string
	}{
		{"Kang Peak", "KANG", ""},
		{"Khang I", "KHANG", "I"},
		{"Khang 1", "KHANG", "1"},
		{"Ama Dablam", "AMADABLAM", ""},
		{"Lhotse Middle", "LHOTSE", "MIDDLE"},
		{"Annapurna  I  Central", "ANNAPURNA", "I CENTRAL"},
		{"Himalchuli NE", "HIMALCHULI", "NORTH EAST"},
		{"Kangtega", "KANGTEGA", ""},
		{"Ka Ngozumpa", "KANGOZUMPA", ""},
		{"Mera Kangri", "MERAKHANGRI", ""},
		{"SE Peak", "SE", ""},
		{"Pk. 6812", "PK", "6812"},
		{"Chulu-West", "CHULU", "WEST"},
		{"Peak Himal", "", ""},
		{"Peak 41", "", "41"},
		{"Tilicho (Grande Barriere)", "TILICHOGRANDEBARRIERE", ""},
		{"Ganesh Himal IV", "GANESH", "IV"},
		{"Naya_Kanga", "NAYA_KANGA", ""},
	}

	n := names.Default()
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			name, title := n.Normalize(tt.raw)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantTitle, title)
		})
	}
}

func TestNormalizeUnicode(t *testing.T) {
	n := names.Default()

	// Decomposed and composed forms normalize identically.
	composed, _ := n.Normalize("Chom\u00f4 Lonzo")
	decomposed, _ := n.Normalize("Chomo\u0302 Lonzo")
	assert.Equal(t, composed, decomposed)
	assert.Equal(t, "CHOM\u00d4LONZO", composed)

	name, title := n.Normalize("Gaurishankar ७")
	assert.Equal(t, "GAURISHANKAR", name)
	assert.Equal(t, "७", title)
}

func TestNormalizeIdempotent(t *testing.T) {
	raws := []string{
		"Kang Peak", "Khang I", "Lhotse Shar", "Himalchuli NE", "Peak 41",
		"Chulu Far East", "Kangtega II", "Everest SE Ridge", "Ama Dablam",
		"Dhaulagiri VII", "Api Middle", "Pk. 6812", "Peak Himal", "Ka Ngozumpa",
		"Mera Kangri",
	}

	n := names.Default()
	for _, raw := range raws {
		name, title := n.Normalize(raw)
		again, _ := n.Normalize(name + " " + title)
		assert.Equal(t, name, again, "raw %q", raw)
	}
}

func TestVariants(t *testing.T) {
	assert.Equal(t,
		[]string{"Kang Peak", "Khang I", "Kang"},
		names.Variants("Kang Peak", " Khang I,, Kang ,"))
	assert.Empty(t, names.Variants("", " , "))
}

func TestFromFields(t *testing.T) {
	records := names.FromFields("X1", "Kang Peak", "Khang I")
	require.Len(t, records, 2)

	assert.Equal(t, names.Record{SourceID: "X1", Sequence: 1, FullName: "Kang Peak", Name: "KANG"}, records[0])
	assert.Equal(t, names.Record{SourceID: "X1", Sequence: 2, FullName: "Khang I", Name: "KHANG", Title: "I"}, records[1])

	assert.Empty(t, names.FromFields("X2", ""))
}

func TestCustomRules(t *testing.T) {
	rules, err := names.ParseRules([]byte(`
rules:
  - pattern: "^MT$"
    type: regex
    replacement: ""
ignore: [HIMAL]
titles: [MAIN]
`), "custom.yaml")
	require.NoError(t, err)

	n, err := names.NewNormalizer(rules)
	require.NoError(t, err)

	name, title := n.Normalize("Mt Everest Main Peak")
	assert.Equal(t, "EVERESTPEAK", name)
	assert.Equal(t, "MAIN", title)
}

func TestLoadRules(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := names.LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
		var ioErr *errors.IOError
		assert.ErrorAs(t, err, &ioErr)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rules: [\n"), 0o600))
		_, err := names.LoadRules(path)
		var parseErr *errors.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("invalid rule", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rules:\n  - type: regex\n"), 0o600))
		_, err := names.LoadRules(path)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("bad pattern", func(t *testing.T) {
		rules := &names.Rules{Titles: []string{"(unclosed"}}
		_, err := names.NewNormalizer(rules)
		assert.Error(t, err)
	})
}
