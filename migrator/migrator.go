// Package migrator implements the reconciliation engine: given a Driver and
// a MigrationSet snapshot, it decides which migrations to apply or revert
// and in which order, and carries out status, up, upto, down, redo, revert,
// drop, and create.
package migrator

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/sqlmidas/midas/driver"
	"github.com/sqlmidas/midas/internal/envkit"
	"github.com/sqlmidas/midas/internal/logkit"
	"github.com/sqlmidas/midas/internal/migerr"
	"github.com/sqlmidas/midas/migration"
)

// stateDir is the sentinel directory whose mere presence marks a directory
// as midas-managed. up and down create it on demand; init creates it too,
// ahead of any migration ever running.
const stateDir = ".migrations-state"

func ensureStateDir() error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return migerr.New(migerr.Filesystem, "migrator.ensureStateDir", err)
	}
	return nil
}

// Migrator holds one Driver and one MigrationSet for the duration of a
// single CLI invocation.
type Migrator struct {
	driver driver.Driver
	set    *migration.MigrationSet
	dir    string
}

// New builds a Migrator over d and set. dir is the migration directory,
// used only by Create.
func New(d driver.Driver, set *migration.MigrationSet, dir string) *Migrator {
	return &Migrator{driver: d, set: set, dir: dir}
}

// StatusEntry correlates one MigrationFile with its applied state.
type StatusEntry struct {
	Number  int64
	Slug    string
	Applied bool
}

// StatusReport is the read-only result of Status.
type StatusReport struct {
	Entries []StatusEntry
	Notice  string
}

// Status reads list_applied from the driver and correlates it against every
// file in the set. It has no side effects.
func (m *Migrator) Status(ctx context.Context) (*StatusReport, error) {
	logkit.Debugf("migrator: status over %d migration file(s)", m.set.Len())
	if m.set.Len() == 0 {
		return &StatusReport{Notice: "There are no available migration files."}, nil
	}

	applied, err := m.appliedSet(ctx)
	if err != nil {
		return nil, err
	}

	report := &StatusReport{}
	for _, n := range m.set.Numbers() {
		f, _ := m.set.Get(n)
		report.Entries = append(report.Entries, StatusEntry{
			Number:  n,
			Slug:    f.Slug(),
			Applied: applied[n],
		})
	}
	return report, nil
}

func (m *Migrator) appliedSet(ctx context.Context) (map[int64]bool, error) {
	nums, err := m.driver.ListApplied(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]bool, len(nums))
	for _, n := range nums {
		out[n] = true
	}
	return out, nil
}

// pending returns the file numbers in F \ A, ascending, restricted to
// numbers <= ceiling when ceiling >= 0.
func (m *Migrator) pending(ctx context.Context, ceiling int64) ([]int64, error) {
	applied, err := m.appliedSet(ctx)
	if err != nil {
		return nil, err
	}

	var out []int64
	for _, n := range m.set.Numbers() {
		if applied[n] {
			continue
		}
		if ceiling >= 0 && n > ceiling {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// Up applies every pending migration in ascending order.
func (m *Migrator) Up(ctx context.Context) (applied []int64, notice string, err error) {
	logkit.Debugf("migrator: up")
	if err := ensureStateDir(); err != nil {
		return nil, "", err
	}
	return m.upTo(ctx, -1)
}

// Upto applies pending migrations whose number is <= n. n must name a
// migration present in the set and must not be negative.
func (m *Migrator) Upto(ctx context.Context, n int64) (applied []int64, notice string, err error) {
	logkit.Debugf("migrator: upto %d", n)
	if err := ensureStateDir(); err != nil {
		return nil, "", err
	}
	if n < 0 {
		return nil, "", migerr.New(migerr.Config, "migrator.Upto", fmt.Errorf("target %d is negative", n))
	}
	if _, ok := m.set.Get(n); !ok {
		return nil, "", migerr.New(migerr.Config, "migrator.Upto", fmt.Errorf("no migration numbered %d", n))
	}
	return m.upTo(ctx, n)
}

func (m *Migrator) upTo(ctx context.Context, ceiling int64) ([]int64, string, error) {
	pending, err := m.pending(ctx, ceiling)
	if err != nil {
		return nil, "", err
	}
	if len(pending) == 0 {
		return nil, "Migrations are all up-to-date.", nil
	}

	var applied []int64
	for _, n := range pending {
		f, ok := m.set.Get(n)
		if !ok {
			return applied, "", migerr.New(migerr.Integrity, "migrator.Up", fmt.Errorf("migration %d vanished from set mid-run", n))
		}
		logkit.Debugf("migrator: applying %d (%s)", n, f.Slug())
		if err := m.driver.Migrate(ctx, f.UpBody(), n); err != nil {
			return applied, "", err
		}
		if err := m.driver.Add(ctx, n); err != nil {
			return applied, "", err
		}
		applied = append(applied, n)
	}
	return applied, "", nil
}

// Down reverts every applied migration in reverse order. With
// MIGRATIONS_SKIP_LAST set, the earliest-applied row is left in the log.
func (m *Migrator) Down(ctx context.Context) (reverted []int64, notice string, err error) {
	logkit.Debugf("migrator: down")
	if err := ensureStateDir(); err != nil {
		return nil, "", err
	}

	appliedOrdered, err := m.driver.ListApplied(ctx)
	if err != nil {
		return nil, "", err
	}
	if len(appliedOrdered) == 0 {
		return nil, "Migrations table is empty. No need to run down.", nil
	}

	skipLast := envkit.SkipLast()
	first := appliedOrdered[0]

	for i := len(appliedOrdered) - 1; i >= 0; i-- {
		n := appliedOrdered[i]
		f, ok := m.set.Get(n)
		if !ok {
			return reverted, "", migerr.New(migerr.Integrity, "migrator.Down", fmt.Errorf("migration %d is logged but has no file", n))
		}
		logkit.Debugf("migrator: reverting %d (%s)", n, f.Slug())
		if err := m.driver.Migrate(ctx, f.DownBody(), n); err != nil {
			return reverted, "", err
		}
		if skipLast && n == first {
			reverted = append(reverted, n)
			continue
		}
		if err := m.driver.Delete(ctx, n); err != nil {
			return reverted, "", err
		}
		reverted = append(reverted, n)
	}
	return reverted, "", nil
}

// Redo reverts then re-applies the last-applied migration. When the log is
// empty, c is treated as 0, the down phase is skipped, and the up body for
// migration 0 is applied and logged — the only path that writes to an
// empty log without Up being invoked.
func (m *Migrator) Redo(ctx context.Context) error {
	logkit.Debugf("migrator: redo")
	c, err := m.driver.LastApplied(ctx)
	if err != nil {
		return err
	}
	if c == driver.LastAppliedNone {
		c = 0
	}

	f, ok := m.set.Get(c)
	if !ok {
		return migerr.New(migerr.Integrity, "migrator.Redo", fmt.Errorf("no migration numbered %d", c))
	}

	if c != 0 {
		if err := m.driver.Migrate(ctx, f.DownBody(), c); err != nil {
			return err
		}
		if err := m.driver.Delete(ctx, c); err != nil {
			return err
		}
	}

	if err := m.driver.Migrate(ctx, f.UpBody(), c); err != nil {
		return err
	}
	return m.driver.Add(ctx, c)
}

// Revert reverts the last-applied migration, steps times. With no
// applications at all it is a no-op. With MIGRATIONS_SKIP_LAST set, the
// sole remaining row is left in the log rather than deleted.
func (m *Migrator) Revert(ctx context.Context, steps int) (reverted []int64, notice string, err error) {
	if steps < 1 {
		steps = 1
	}
	logkit.Debugf("migrator: revert %d step(s)", steps)

	for i := 0; i < steps; i++ {
		c, err := m.driver.LastApplied(ctx)
		if err != nil {
			return reverted, "", err
		}
		if c == driver.LastAppliedNone {
			if i == 0 {
				return nil, "Nothing to revert.", nil
			}
			break
		}

		// Count is read before executing the down body, per the
		// before-ordering decision recorded for this operation.
		count, err := m.driver.Count(ctx)
		if err != nil {
			return reverted, "", err
		}

		f, ok := m.set.Get(c)
		if !ok {
			return reverted, "", migerr.New(migerr.Integrity, "migrator.Revert", fmt.Errorf("migration %d is logged but has no file", c))
		}
		if err := m.driver.Migrate(ctx, f.DownBody(), c); err != nil {
			return reverted, "", err
		}

		if envkit.SkipLast() && count == 1 {
			reverted = append(reverted, c)
			continue
		}
		if err := m.driver.DeleteLast(ctx); err != nil {
			return reverted, "", err
		}
		reverted = append(reverted, c)
	}
	return reverted, "", nil
}

// Drop parses the connection URL, extracts the database name from its
// path, and invokes DropDatabase. A URL that fails to parse or has no path
// is a no-op.
func (m *Migrator) Drop(ctx context.Context, rawURL string) error {
	logkit.Debugf("migrator: drop")
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return nil
	}
	return m.driver.DropDatabase(ctx, name)
}

// Create delegates to the Migration Store's create operation.
func (m *Migrator) Create(slug string) (string, error) {
	logkit.Debugf("migrator: create %q", slug)
	return migration.Create(m.dir, slug)
}
