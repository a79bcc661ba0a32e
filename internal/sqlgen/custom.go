package sqlgen

import (
	"fmt"
	"strings"

	"github.com/saevarl/kontra"
)

var disallowedKeywords = []string{
	"insert ", "update ", "delete ", "drop ", "alter ", "truncate ", "grant ", "revoke ",
	"create ", "merge ", "exec ", "execute ", "call ", "into ",
}

// ValidateCustomSQL enforces custom_sql_check's single-SELECT constraint
// (§4.4): no semicolon-separated statements, no DDL/DML keywords. This is a
// hand check, not a SQL parser - no SQL-aware static analyzer in the corpus
// covers duckdb/postgres/mssql uniformly (see DESIGN.md).
func ValidateCustomSQL(sql string) error {
	trimmed := strings.TrimSpace(sql)
	lower := strings.ToLower(trimmed)

	if !strings.HasPrefix(lower, "select ") && !strings.HasPrefix(lower, "select(") {
		return kontra.NewSQLError(kontra.ErrCodeCustomSQLRejected, "custom_sql_check: statement must begin with SELECT", nil)
	}
	if strings.Contains(strings.TrimRight(trimmed, "; \t\n"), ";") {
		return kontra.NewSQLError(kontra.ErrCodeCustomSQLRejected, "custom_sql_check: only a single statement is permitted", nil)
	}
	for _, kw := range disallowedKeywords {
		if strings.Contains(lower, kw) {
			return kontra.NewSQLError(kontra.ErrCodeCustomSQLRejected, "custom_sql_check: disallowed keyword in statement", nil).
				WithDetail("keyword", strings.TrimSpace(kw))
		}
	}
	return nil
}

// WrapCustomSQL substitutes the {table} placeholder with the dataset's
// qualified table name and wraps the statement so its row count becomes the
// rule's fail count (§4.4: "SELECT COUNT(*) FROM (<user sql>) _").
func WrapCustomSQL(sql, table string) string {
	substituted := strings.ReplaceAll(sql, "{table}", table)
	return fmt.Sprintf("SELECT COUNT(*) AS fail_count FROM (%s) _", substituted)
}
