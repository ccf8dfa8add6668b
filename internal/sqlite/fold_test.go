package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldFunctionInSQL(t *testing.T) {
	b, _ := setupBackend(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   any
		want sql.NullString
	}{
		{name: "ascii", in: "MiXeD", want: sql.NullString{String: "mixed", Valid: true}},
		{name: "umlaut", in: "ÄRGER", want: sql.NullString{String: "ärger", Valid: true}},
		{name: "decomposed", in: "A\u0308", want: sql.NullString{String: "\u00e4", Valid: true}},
		{name: "null", in: nil, want: sql.NullString{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got sql.NullString
			require.NoError(t, b.db.QueryRowContext(ctx, "SELECT "+foldFunc+"(?)", tt.in).Scan(&got))
			assert.Equal(t, tt.want, got)
			if tt.want.Valid {
				assert.Equal(t, foldText(tt.in.(string)), got.String)
			}
		})
	}
}
