package driver

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestPostgresDropCreateStmts(t *testing.T) {
	c := qt.New(t)

	drop, create := postgresDropCreateStmts("appdb")
	c.Assert(drop, qt.Equals, `DROP DATABASE IF EXISTS "appdb"`)
	c.Assert(create, qt.Equals, `CREATE DATABASE "appdb"`)
}

func TestMySQLDropCreateStmts(t *testing.T) {
	c := qt.New(t)

	drop, create := mysqlDropCreateStmts("appdb")
	c.Assert(drop, qt.Equals, "DROP DATABASE IF EXISTS `appdb`")
	c.Assert(create, qt.Equals, "CREATE DATABASE `appdb`")
}
