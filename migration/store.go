package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sqlmidas/midas/internal/migerr"
)

// filenameRe matches the NNNNNNNNNNNNN_slug.sql grammar: exactly 13 decimal
// digits, an underscore, a slug of word characters, and the .sql suffix.
var filenameRe = regexp.MustCompile(`^([0-9]{13})_([_0-9A-Za-z]*)\.sql$`)

const template = "-- # Put the your SQL below migration seperator.\n-- !UP\n\n-- !DOWN\n"

// Load enumerates dir non-recursively, parses every filename against the
// grammar, reads and splits the bodies of the ones that match, and
// assembles the resulting MigrationSet. Filenames that fail the grammar
// are skipped silently. A body missing either marker is a fatal *Parse*
// error.
func Load(dir string) (*MigrationSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, migerr.New(migerr.Filesystem, "migration.Load", err)
	}

	set := NewMigrationSet()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		number, ok := parseFilename(entry.Name())
		if !ok {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, migerr.New(migerr.Filesystem, "migration.Load", err)
		}

		up, down, err := splitBody(string(raw))
		if err != nil {
			return nil, migerr.New(migerr.Parse, entry.Name(), err)
		}

		set.Add(&MigrationFile{
			Number:      number,
			Filename:    entry.Name(),
			ContentUp:   up,
			ContentDown: down,
		})
	}

	return set, nil
}

// parseFilename reports whether name matches the migration grammar and, if
// so, returns its 13-digit number parsed as an int64.
func parseFilename(name string) (int64, bool) {
	m := filenameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	number, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return number, true
}

// splitBody divides a migration file's text into its up and down line
// sequences. The preamble before "-- !UP" is discarded. Either marker line
// may carry a trailing \r. Missing either marker is an error.
func splitBody(content string) (up, down []string, err error) {
	lines := strings.Split(content, "\n")

	upIdx, downIdx := -1, -1
	for i, line := range lines {
		trimmed := strings.TrimSuffix(line, "\r")
		switch trimmed {
		case "-- !UP":
			if upIdx == -1 {
				upIdx = i
			}
		case "-- !DOWN":
			if downIdx == -1 {
				downIdx = i
			}
		}
	}

	if upIdx == -1 {
		return nil, nil, fmt.Errorf("migration body is missing the -- !UP marker")
	}
	if downIdx == -1 {
		return nil, nil, fmt.Errorf("migration body is missing the -- !DOWN marker")
	}

	return lines[upIdx+1 : downIdx], lines[downIdx+1:], nil
}

// Create writes a new migration template into dir, named after the current
// Unix-epoch millisecond count and a normalized slug, and fsyncs it before
// returning the created path.
func Create(dir, slug string) (string, error) {
	fixed := strings.ReplaceAll(strings.ToLower(slug), " ", "_")
	filename := fmt.Sprintf("%013d_%s.sql", time.Now().UnixMilli(), fixed)
	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", migerr.New(migerr.Filesystem, "migration.Create", err)
	}
	defer f.Close()

	if _, err := f.WriteString(template); err != nil {
		return "", migerr.New(migerr.Filesystem, "migration.Create", err)
	}
	if err := f.Sync(); err != nil {
		return "", migerr.New(migerr.Filesystem, "migration.Create", err)
	}

	return path, nil
}
