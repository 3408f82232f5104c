package normalize

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/peakmap"
	"github.com/agentstation/peakmap/cmd/application"
	"github.com/agentstation/peakmap/internal/cmd/table"
)

func TestNormalize(t *testing.T) {
	client, err := peakmap.New()
	require.NoError(t, err)

	rows := Normalize(client.Normalizer(), []string{"Kang Peak", "Ama Dablam, Amadablam"})
	require.Len(t, rows, 3)

	assert.Equal(t, table.NameRow{Raw: "Kang Peak", Name: "KANG"}, rows[0])
	assert.Equal(t, "Ama Dablam", rows[1].Raw)
	assert.Equal(t, "AMADABLAM", rows[1].Name)
	assert.Equal(t, "Amadablam", rows[2].Raw)
	assert.Equal(t, rows[1].Name, rows[2].Name)
}

func TestNormalizeCommand_Stdin(t *testing.T) {
	app := &application.Mock{OutputFormatFunc: func() string { return "json" }}
	cmd := NewCommand(app)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("Kang Peak\n\n  Ama Dablam  \n"))
	cmd.SetArgs(nil)
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var rows []table.NameRow
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "KANG", rows[0].Name)
	assert.Equal(t, "Ama Dablam", rows[1].Raw)
}

func TestNormalizeCommand_Table(t *testing.T) {
	app := &application.Mock{}
	cmd := NewCommand(app)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"Kang Peak"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "KANG")
	assert.Contains(t, out.String(), "Kang Peak")
}
