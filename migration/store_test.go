package migration_test

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/sqlmidas/midas/internal/migerr"
	"github.com/sqlmidas/midas/migration"
)

func writeFile(c *qt.C, dir, name, body string) {
	c.Assert(os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644), qt.IsNil)
}

func TestLoad_FilenameRoundTrip(t *testing.T) {
	c := qt.New(t)
	dir := c.Mkdir()

	writeFile(c, dir, "0000000000001_add_users.sql", "-- !UP\nCREATE TABLE users();\n-- !DOWN\nDROP TABLE users;\n")

	set, err := migration.Load(dir)
	c.Assert(err, qt.IsNil)
	c.Assert(set.Len(), qt.Equals, 1)

	f, ok := set.Get(1)
	c.Assert(ok, qt.IsTrue)
	c.Assert(f.Number, qt.Equals, int64(1))
	c.Assert(f.Filename, qt.Equals, "0000000000001_add_users.sql")
}

func TestLoad_BodyRoundTrip(t *testing.T) {
	c := qt.New(t)
	dir := c.Mkdir()

	writeFile(c, dir, "0000000000002_seed.sql",
		"-- preamble, discarded\n-- !UP\nCREATE TABLE a();\n\nCREATE TABLE b();\n-- !DOWN\nDROP TABLE b();\n\nDROP TABLE a();\n")

	set, err := migration.Load(dir)
	c.Assert(err, qt.IsNil)

	f, _ := set.Get(2)
	c.Assert(f.UpBody(), qt.Equals, "CREATE TABLE a();\nCREATE TABLE b();")
	c.Assert(f.DownBody(), qt.Equals, "DROP TABLE b();\nDROP TABLE a();")
}

func TestLoad_IgnoresNonMatchingFilenames(t *testing.T) {
	c := qt.New(t)
	dir := c.Mkdir()

	writeFile(c, dir, "README.md", "not a migration")
	writeFile(c, dir, "12345_too_short.sql", "-- !UP\n-- !DOWN\n")
	writeFile(c, dir, "0000000000003_ok.sql", "-- !UP\nSELECT 1;\n-- !DOWN\nSELECT 2;\n")

	set, err := migration.Load(dir)
	c.Assert(err, qt.IsNil)
	c.Assert(set.Len(), qt.Equals, 1)
	c.Assert(set.Numbers(), qt.DeepEquals, []int64{3})
}

func TestLoad_MissingUpMarkerIsParseError(t *testing.T) {
	c := qt.New(t)
	dir := c.Mkdir()

	writeFile(c, dir, "0000000000004_broken.sql", "-- !DOWN\nSELECT 1;\n")

	_, err := migration.Load(dir)
	c.Assert(err, qt.ErrorMatches, ".*")
	c.Assert(migerr.Is(err, migerr.Parse), qt.IsTrue)
}

func TestSet_OrderIsAscending(t *testing.T) {
	c := qt.New(t)
	dir := c.Mkdir()

	writeFile(c, dir, "0000000000003_c.sql", "-- !UP\n-- !DOWN\n")
	writeFile(c, dir, "0000000000001_a.sql", "-- !UP\n-- !DOWN\n")
	writeFile(c, dir, "0000000000002_b.sql", "-- !UP\n-- !DOWN\n")

	set, err := migration.Load(dir)
	c.Assert(err, qt.IsNil)
	c.Assert(set.Numbers(), qt.DeepEquals, []int64{1, 2, 3})
}

func TestCreate_WritesTemplateAndFsyncs(t *testing.T) {
	c := qt.New(t)
	dir := c.Mkdir()

	path, err := migration.Create(dir, "Add Users Table")
	c.Assert(err, qt.IsNil)

	body, err := os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(string(body), qt.Contains, "-- !UP")
	c.Assert(string(body), qt.Contains, "-- !DOWN")
	c.Assert(filepath.Base(path), qt.Matches, `[0-9]{13}_add_users_table\.sql`)
}

func TestSlug_Humanizes(t *testing.T) {
	c := qt.New(t)
	f := &migration.MigrationFile{Filename: "0000000000001_add_users_table.sql"}
	c.Assert(f.Slug(), qt.Equals, "Add Users Table")
}
