// Package sqlgen builds dialect-aware SQL fragments for the pushdown tier
// (SPEC_FULL.md §4.4). Grounded on the teacher's
// internal/dualpath_sql_generator.go: per-dialect clause builders
// (buildPgMainClause vs buildDuckClause) generalized from two hardcoded
// dialects to a small Dialect interface covering duckdb, postgres, and mssql.
package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/saevarl/kontra"
)

// Dialect emits identifier quoting and parameter placeholders specific to one
// SQL engine. The teacher hardcodes `"x"` for Postgres/DuckDB quoting inline;
// here it's pulled into an interface so a third (mssql, `[x]`) dialect slots
// in without touching the fragment emitters.
type Dialect interface {
	Name() kontra.Dialect
	QuoteIdent(name string) string
	Placeholder(n int) string
}

type duckdbDialect struct{}
type postgresDialect struct{}
type mssqlDialect struct{}

func (duckdbDialect) Name() kontra.Dialect      { return kontra.DialectDuckDB }
func (duckdbDialect) QuoteIdent(name string) string { return `"` + strings.ReplaceAll(name, `"`, `""`) + `"` }
func (duckdbDialect) Placeholder(int) string        { return "?" }

func (postgresDialect) Name() kontra.Dialect      { return kontra.DialectPostgres }
func (postgresDialect) QuoteIdent(name string) string { return `"` + strings.ReplaceAll(name, `"`, `""`) + `"` }
func (postgresDialect) Placeholder(n int) string      { return "$" + strconv.Itoa(n) }

func (mssqlDialect) Name() kontra.Dialect      { return kontra.DialectMSSQL }
func (mssqlDialect) QuoteIdent(name string) string { return "[" + strings.ReplaceAll(name, "]", "]]") + "]" }
func (mssqlDialect) Placeholder(int) string        { return "?" } // go-mssqldb rewrites ? to @pN

// For returns the Dialect implementation for d, or an error if d has no SQL
// emitter (§7, UNSUPPORTED_DIALECT).
func For(d kontra.Dialect) (Dialect, error) {
	switch d {
	case kontra.DialectDuckDB:
		return duckdbDialect{}, nil
	case kontra.DialectPostgres:
		return postgresDialect{}, nil
	case kontra.DialectMSSQL:
		return mssqlDialect{}, nil
	default:
		return nil, kontra.NewSQLError(kontra.ErrCodeUnsupportedDialect,
			fmt.Sprintf("sqlgen: no SQL emitter for dialect %q", d), nil)
	}
}
