// Package embedded ships the default normalization rules and manual override
// tables inside the binary. Both can be replaced at run time by files of the
// same shape.
package embedded

import (
	"embed"
)

// FS holds the default configuration tables.
//
//go:embed data/*.yaml
var FS embed.FS

const (
	// RulesFile is the path of the default normalization rules inside FS.
	RulesFile = "data/rules.yaml"

	// OverridesFile is the path of the default override tables inside FS.
	OverridesFile = "data/overrides.yaml"
)

// Rules returns the default normalization rules document.
func Rules() []byte {
	return mustRead(RulesFile)
}

// Overrides returns the default override tables document.
func Overrides() []byte {
	return mustRead(OverridesFile)
}

func mustRead(name string) []byte {
	data, err := FS.ReadFile(name)
	if err != nil {
		panic("embedded: missing " + name)
	}
	return data
}
