// Package normalize provides the normalize command.
package normalize

import (
	"bufio"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/peakmap/cmd/application"
	"github.com/agentstation/peakmap/internal/cmd/output"
	"github.com/agentstation/peakmap/internal/cmd/table"
	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/names"
)

// NewCommand creates the normalize command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "normalize [name...]",
		GroupID: "inspect",
		Short:   "Show the normalized form of peak names",
		Long: `Normalize prints the matching name and title of each argument using the
configured rules. With no arguments names are read from standard input,
one per line. A comma-separated argument is split into its variants.`,
		Example: `  peakmap normalize "Kang Peak" "Khang I"
  cut -d'|' -f2 hdb_peak.txt | peakmap normalize -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				if args, err = readLines(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			rows := Normalize(client.Normalizer(), args)
			return output.Render(cmd.OutOrStdout(), app.OutputFormat(), table.Names(rows), rows)
		},
	}
}

// Normalize normalizes every name variant of raw.
func Normalize(n *names.Normalizer, raw []string) []table.NameRow {
	var rows []table.NameRow
	for _, v := range names.Variants(raw...) {
		name, title := n.Normalize(v)
		rows = append(rows, table.NameRow{Raw: v, Name: name, Title: title})
	}
	return rows
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.WrapIO("read", "stdin", err)
	}
	return lines, nil
}
