package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCustomSQL_Accepts(t *testing.T) {
	assert.NoError(t, ValidateCustomSQL("SELECT COUNT(*) AS fail_count FROM listings WHERE price < 0"))
	assert.NoError(t, ValidateCustomSQL("  select 1  "))
}

func TestValidateCustomSQL_RejectsNonSelect(t *testing.T) {
	assert.Error(t, ValidateCustomSQL("UPDATE listings SET price = 0"))
}

func TestValidateCustomSQL_RejectsMultipleStatements(t *testing.T) {
	assert.Error(t, ValidateCustomSQL("SELECT 1; SELECT 2"))
}

func TestValidateCustomSQL_AllowsTrailingSemicolon(t *testing.T) {
	assert.NoError(t, ValidateCustomSQL("SELECT 1;"))
}

func TestValidateCustomSQL_RejectsDisallowedKeyword(t *testing.T) {
	assert.Error(t, ValidateCustomSQL("SELECT 1 FROM (INSERT INTO x VALUES (1)) t"))
}

func TestWrapCustomSQL_SubstitutesTablePlaceholder(t *testing.T) {
	got := WrapCustomSQL(`SELECT * FROM {table} WHERE price < 0`, `"listings"`)
	assert.Equal(t, `SELECT COUNT(*) AS fail_count FROM (SELECT * FROM "listings" WHERE price < 0) _`, got)
}

func TestWrapCustomSQL_NoPlaceholder(t *testing.T) {
	got := WrapCustomSQL(`SELECT 1`, `"listings"`)
	assert.Equal(t, `SELECT COUNT(*) AS fail_count FROM (SELECT 1) _`, got)
}
