package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saevarl/kontra"
)

func TestFor_KnownDialects(t *testing.T) {
	cases := []struct {
		dialect kontra.Dialect
		ident   string
		want    string
	}{
		{kontra.DialectPostgres, "id", `"id"`},
		{kontra.DialectDuckDB, "id", `"id"`},
		{kontra.DialectMSSQL, "id", `[id]`},
	}
	for _, c := range cases {
		d, err := For(c.dialect)
		require.NoError(t, err)
		assert.Equal(t, c.dialect, d.Name())
		assert.Equal(t, c.want, d.QuoteIdent(c.ident))
	}
}

func TestFor_UnsupportedDialect(t *testing.T) {
	_, err := For(kontra.Dialect("redshift"))
	assert.Error(t, err)
}

func TestPostgresDialect_PlaceholderIsNumbered(t *testing.T) {
	d, err := For(kontra.DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t, "$1", d.Placeholder(1))
	assert.Equal(t, "$2", d.Placeholder(2))
}

func TestDuckDBDialect_PlaceholderIsQuestionMark(t *testing.T) {
	d, err := For(kontra.DialectDuckDB)
	require.NoError(t, err)
	assert.Equal(t, "?", d.Placeholder(1))
	assert.Equal(t, "?", d.Placeholder(2))
}

func TestQuoteIdent_EscapesEmbeddedQuote(t *testing.T) {
	d, err := For(kontra.DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t, `"a""b"`, d.QuoteIdent(`a"b`))

	m, err := For(kontra.DialectMSSQL)
	require.NoError(t, err)
	assert.Equal(t, "[a]]b]", m.QuoteIdent("a]b"))
}
