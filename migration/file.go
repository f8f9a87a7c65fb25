// Package migration implements the on-disk migration-file model: parsing
// the NNNNNNNNNNNNN_slug.sql naming grammar, splitting a file body into its
// up/down halves, and assembling the ordered MigrationSet the migrator
// reconciles against the database log.
package migration

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MigrationFile is one on-disk change set.
//
// Invariant: if ContentUp is non-nil so is ContentDown, and both were
// extracted from the same file in a single parse.
type MigrationFile struct {
	Number      int64
	Filename    string
	ContentUp   []string
	ContentDown []string
}

// UpBody reassembles the forward body by dropping empty lines and joining
// the rest with a single newline. This is a textual normalization, not a
// SQL-aware one: it will mangle a multi-line string literal that contains
// a blank line.
func (f *MigrationFile) UpBody() string {
	return joinNonEmpty(f.ContentUp)
}

// DownBody reassembles the reverse body with the same normalization as UpBody.
func (f *MigrationFile) DownBody() string {
	return joinNonEmpty(f.ContentDown)
}

func joinNonEmpty(lines []string) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

var titleCaser = cases.Title(language.English)

// Slug derives a human-readable label from the filename for display in
// status/list output. The stored Filename is untouched; this is cosmetic
// only.
func (f *MigrationFile) Slug() string {
	name := strings.TrimSuffix(f.Filename, ".sql")
	if idx := strings.IndexByte(name, '_'); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "_", " ")
	if name == "" {
		return name
	}
	return titleCaser.String(name)
}
