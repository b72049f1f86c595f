package warehouse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Batch statements build their source relation as a UNION ALL of literal
// SELECTs, so user-controlled text (titles, descriptions, comments) must
// be escaped into valid string literals. Single-row statements bind query
// parameters instead and never pass through here.

var sqlEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
)

// EscapeString escapes backslashes, single quotes and line breaks so the
// value can be embedded in a single-quoted SQL string literal.
func EscapeString(s string) string {
	return sqlEscaper.Replace(s)
}

// SQLString renders a nullable string literal.
func SQLString(s *string) string {
	if s == nil {
		return "CAST(NULL AS STRING)"
	}
	return "'" + EscapeString(*s) + "'"
}

// SQLInt renders a nullable integer literal.
func SQLInt(v *int64) string {
	if v == nil {
		return "CAST(NULL AS INT64)"
	}
	return strconv.FormatInt(*v, 10)
}

// SQLFloat renders a nullable float literal.
func SQLFloat(v *float64) string {
	if v == nil {
		return "CAST(NULL AS FLOAT64)"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// SQLBool renders a nullable boolean literal.
func SQLBool(v *bool) string {
	if v == nil {
		return "CAST(NULL AS BOOL)"
	}
	if *v {
		return "TRUE"
	}
	return "FALSE"
}

// SQLTimestamp renders a nullable timestamp literal in UTC.
func SQLTimestamp(t *time.Time) string {
	if t == nil {
		return "CAST(NULL AS TIMESTAMP)"
	}
	return fmt.Sprintf("TIMESTAMP '%s'", t.UTC().Format("2006-01-02 15:04:05.000000"))
}

// SQLDate renders a DATE literal in UTC.
func SQLDate(t time.Time) string {
	return fmt.Sprintf("DATE '%s'", t.UTC().Format("2006-01-02"))
}

// SQLStringArray renders an ARRAY<STRING> literal.
func SQLStringArray(vals []string) string {
	if len(vals) == 0 {
		return "[]"
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = "'" + EscapeString(v) + "'"
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
