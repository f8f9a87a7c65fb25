package migrator_test

import (
	"context"

	"github.com/sqlmidas/midas/driver"
)

// migrateCall records one Migrate invocation on the fake driver.
type migrateCall struct {
	Number int64
	Body   string
}

// fakeDriver is an in-memory Driver used to exercise the reconciliation
// engine without a real database connection.
type fakeDriver struct {
	log          []int64 // insertion order, mirrors id order
	name         string
	migrateCalls []migrateCall
	dropped      string
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{name: "fake"}
}

func (d *fakeDriver) EnsureLog(context.Context) error { return nil }
func (d *fakeDriver) DropLog(context.Context) error {
	d.log = nil
	return nil
}

func (d *fakeDriver) DropDatabase(_ context.Context, name string) error {
	d.dropped = name
	d.log = nil
	return nil
}

func (d *fakeDriver) Count(context.Context) (int64, error) {
	return int64(len(d.log)), nil
}

func (d *fakeDriver) ListApplied(context.Context) ([]int64, error) {
	out := make([]int64, len(d.log))
	copy(out, d.log)
	return out, nil
}

func (d *fakeDriver) LastApplied(context.Context) (int64, error) {
	if len(d.log) == 0 {
		return driver.LastAppliedNone, nil
	}
	return d.log[len(d.log)-1], nil
}

func (d *fakeDriver) Add(_ context.Context, n int64) error {
	d.log = append(d.log, n)
	return nil
}

func (d *fakeDriver) Delete(_ context.Context, n int64) error {
	out := d.log[:0]
	for _, m := range d.log {
		if m != n {
			out = append(out, m)
		}
	}
	d.log = out
	return nil
}

func (d *fakeDriver) DeleteLast(context.Context) error {
	if len(d.log) == 0 {
		return nil
	}
	d.log = d.log[:len(d.log)-1]
	return nil
}

func (d *fakeDriver) Migrate(_ context.Context, body string, n int64) error {
	d.migrateCalls = append(d.migrateCalls, migrateCall{Number: n, Body: body})
	return nil
}

func (d *fakeDriver) DBName() string { return d.name }
func (d *fakeDriver) Close() error   { return nil }
