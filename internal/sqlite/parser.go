package sqlite

import (
	"regexp"
	"strings"
)

var (
	// triggerStart matches a line that opens a CREATE TRIGGER block.
	triggerStart = regexp.MustCompile(`(?i)^CREATE\s+(TEMP\s+|TEMPORARY\s+)?TRIGGER\b`)

	// triggerInlineEnd matches the closing END at the tail of a one-line
	// trigger. It is only tried on the CREATE TRIGGER line itself.
	triggerInlineEnd = regexp.MustCompile(`(?i)(^|[\s;])END;?$`)

	// triggerBodyEnd matches a body line that is nothing but END. Lines that
	// merely end in END, such as a CASE expression, stay in the body.
	triggerBodyEnd = regexp.MustCompile(`(?i)^END;?$`)
)

// SplitStatements splits a SQL script into executable statements.
//
// Outside a trigger every semicolon ends a statement. A line starting with
// CREATE TRIGGER switches to trigger mode, where lines are kept verbatim
// until a line that is exactly END or END;, so semicolons inside the body
// do not split it. Whole-line "--" comments outside triggers are dropped.
//
// Statements keep script order, carry no empty fragments, and always end in
// a semicolon. Text left at end of input, including an unterminated trigger,
// is returned as a final statement.
func SplitStatements(script string) []string {
	var (
		out       []string
		buf       strings.Builder
		inTrigger bool
	)

	emit := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || s == ";" {
			return
		}
		if !strings.HasSuffix(s, ";") {
			s += ";"
		}
		out = append(out, s)
	}

	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)

		if inTrigger {
			buf.WriteString(line)
			buf.WriteByte('\n')
			if triggerBodyEnd.MatchString(trimmed) {
				emit(buf.String())
				buf.Reset()
				inTrigger = false
			}
			continue
		}

		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}

		if triggerStart.MatchString(trimmed) {
			buf.WriteString(line)
			buf.WriteByte('\n')
			if triggerInlineEnd.MatchString(trimmed) {
				emit(buf.String())
				buf.Reset()
			} else {
				inTrigger = true
			}
			continue
		}

		buf.WriteString(line)
		buf.WriteByte('\n')

		pending := buf.String()
		for {
			i := strings.IndexByte(pending, ';')
			if i < 0 {
				break
			}
			emit(pending[:i+1])
			pending = pending[i+1:]
		}
		buf.Reset()
		if strings.TrimSpace(pending) != "" {
			buf.WriteString(pending)
		}
	}

	emit(buf.String())
	return out
}

// isPragma reports whether stmt is a PRAGMA statement.
func isPragma(stmt string) bool {
	return hasKeywordPrefix(stmt, "PRAGMA")
}

// isTransactionMarker reports whether stmt is a BEGIN, COMMIT or END
// TRANSACTION marker, which the schema runner manages itself.
func isTransactionMarker(stmt string) bool {
	s := strings.ToUpper(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(stmt), ";")))
	switch s {
	case "BEGIN", "BEGIN TRANSACTION", "BEGIN DEFERRED", "BEGIN DEFERRED TRANSACTION",
		"BEGIN IMMEDIATE", "BEGIN IMMEDIATE TRANSACTION", "BEGIN EXCLUSIVE", "BEGIN EXCLUSIVE TRANSACTION",
		"COMMIT", "COMMIT TRANSACTION", "END", "END TRANSACTION":
		return true
	}
	return false
}

func hasKeywordPrefix(stmt, keyword string) bool {
	s := strings.TrimSpace(stmt)
	if len(s) < len(keyword) || !strings.EqualFold(s[:len(keyword)], keyword) {
		return false
	}
	if len(s) == len(keyword) {
		return true
	}
	c := s[len(keyword)]
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ';'
}
