package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderStatements(stmts []string) []byte {
	var b strings.Builder
	for i, s := range stmts {
		fmt.Fprintf(&b, "-- statement %d\n%s\n", i+1, s)
	}
	return []byte(b.String())
}

func TestSplitStatementsGolden(t *testing.T) {
	scripts := []string{
		"trigger_block",
		"multiline_statements",
		"unterminated_trigger",
		"case_in_trigger_body",
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, name := range scripts {
		t.Run(name, func(t *testing.T) {
			raw, err := os.ReadFile(filepath.Join("testdata", "scripts", name+".sql"))
			require.NoError(t, err)
			g.Assert(t, name, renderStatements(SplitStatements(string(raw))))
		})
	}
}

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{
			name:   "one line trigger keeps embedded semicolon",
			script: "CREATE TRIGGER t AFTER UPDATE ON x BEGIN UPDATE x SET y=1; END;\nCREATE TABLE z(a INTEGER);",
			want: []string{
				"CREATE TRIGGER t AFTER UPDATE ON x BEGIN UPDATE x SET y=1; END;",
				"CREATE TABLE z(a INTEGER);",
			},
		},
		{
			name:   "several statements on one line",
			script: "SELECT 1; SELECT 2;SELECT 3;",
			want:   []string{"SELECT 1;", "SELECT 2;", "SELECT 3;"},
		},
		{
			name:   "trailing text gets a semicolon",
			script: "CREATE TABLE a(x INTEGER);\nINSERT INTO a VALUES (1)",
			want:   []string{"CREATE TABLE a(x INTEGER);", "INSERT INTO a VALUES (1);"},
		},
		{
			name:   "comments and blank lines dropped",
			script: "-- header\n\n   -- indented\nSELECT 1;\n\n",
			want:   []string{"SELECT 1;"},
		},
		{
			name:   "empty fragments dropped",
			script: ";;\n ; SELECT 1;;",
			want:   []string{"SELECT 1;"},
		},
		{
			name:   "lower case trigger with END on its own line",
			script: "create trigger t after insert on a\nbegin\n  select 1;\n  select 2;\nend\nselect 3;",
			want: []string{
				"create trigger t after insert on a\nbegin\n  select 1;\n  select 2;\nend;",
				"select 3;",
			},
		},
		{
			name:   "CASE END inside multi-line trigger body",
			script: "CREATE TRIGGER t AFTER INSERT ON a\nBEGIN\n  UPDATE a SET y = CASE WHEN NEW.v > 0 THEN 1 ELSE 0 END;\n  DELETE FROM a WHERE id < 0;\nEND;\nSELECT 1;",
			want: []string{
				"CREATE TRIGGER t AFTER INSERT ON a\nBEGIN\n  UPDATE a SET y = CASE WHEN NEW.v > 0 THEN 1 ELSE 0 END;\n  DELETE FROM a WHERE id < 0;\nEND;",
				"SELECT 1;",
			},
		},
		{
			name:   "one line trigger with CASE END",
			script: "CREATE TRIGGER t AFTER INSERT ON a BEGIN UPDATE a SET y = CASE WHEN 1 THEN 2 END; END;\nSELECT 1;",
			want: []string{
				"CREATE TRIGGER t AFTER INSERT ON a BEGIN UPDATE a SET y = CASE WHEN 1 THEN 2 END; END;",
				"SELECT 1;",
			},
		},
		{
			name:   "comment inside trigger body kept",
			script: "CREATE TRIGGER t AFTER INSERT ON a\nBEGIN\n-- note\n  SELECT 1;\nEND;",
			want:   []string{"CREATE TRIGGER t AFTER INSERT ON a\nBEGIN\n-- note\n  SELECT 1;\nEND;"},
		},
		{
			name:   "crlf line endings",
			script: "SELECT 1;\r\nSELECT 2;\r\n",
			want:   []string{"SELECT 1;", "SELECT 2;"},
		},
		{
			name:   "empty script",
			script: "",
			want:   nil,
		},
		{
			name:   "only comments",
			script: "-- nothing here\n-- still nothing",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitStatements(tt.script))
		})
	}
}

func TestSplitStatementsEmbeddedSchema(t *testing.T) {
	stmts := SplitStatements(schemaSQL)
	require.NotEmpty(t, stmts)

	triggers := 0
	for _, s := range stmts {
		assert.True(t, strings.HasSuffix(s, ";"), "statement not terminated: %q", s)
		if triggerStart.MatchString(s) {
			triggers++
			assert.Contains(t, s, "END;")
		}
	}
	assert.Equal(t, 1, triggers)
}

func TestStatementClassifiers(t *testing.T) {
	assert.True(t, isPragma("PRAGMA foreign_keys = ON;"))
	assert.True(t, isPragma("  pragma journal_mode=WAL;"))
	assert.False(t, isPragma("PRAGMATIC;"))
	assert.False(t, isPragma("CREATE TABLE pragma_x(a);"))

	assert.True(t, isTransactionMarker("BEGIN;"))
	assert.True(t, isTransactionMarker("begin transaction;"))
	assert.True(t, isTransactionMarker("COMMIT;"))
	assert.True(t, isTransactionMarker("END TRANSACTION;"))
	assert.False(t, isTransactionMarker("CREATE TABLE a(x);"))
}
