package sqlite

import (
	"database/sql/driver"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	sqlitedrv "modernc.org/sqlite"
)

// foldFunc is the SQL name of foldText inside the store.
const foldFunc = "mindstore_fold"

func init() {
	if err := sqlitedrv.RegisterDeterministicScalarFunction(foldFunc, 1, sqlFold); err != nil {
		panic("registering " + foldFunc + ": " + err.Error())
	}
}

// foldText normalizes s to NFC and applies Unicode case folding, so text
// compares equal regardless of case or composition.
func foldText(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// foldName returns the key used for case-insensitive name comparison.
func foldName(name string) string {
	return foldText(strings.TrimSpace(name))
}

// sqlFold exposes foldText to SQL. NULL stays NULL and non-text values pass
// through unchanged.
func sqlFold(_ *sqlitedrv.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return foldText(v), nil
	case []byte:
		return foldText(string(v)), nil
	default:
		return v, nil
	}
}
