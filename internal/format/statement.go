package format

import "strings"

// StatementKind classifies a SQL statement by its leading keyword
type StatementKind string

const (
	StatementDDL     StatementKind = "ddl"
	StatementDML     StatementKind = "dml"
	StatementUnknown StatementKind = ""
)

// ClassifyStatement returns whether query changes the schema or the data.
// Leading line and block comments are skipped.
func ClassifyStatement(query string) StatementKind {
	q := stripLeadingComments(query)
	fields := strings.Fields(q)
	if len(fields) == 0 {
		return StatementUnknown
	}

	switch strings.ToUpper(fields[0]) {
	case "CREATE", "ALTER", "DROP", "TRUNCATE", "RENAME", "COMMENT", "GRANT", "REVOKE":
		return StatementDDL
	case "INSERT", "UPDATE", "DELETE", "MERGE", "SELECT", "WITH":
		return StatementDML
	default:
		return StatementUnknown
	}
}

func stripLeadingComments(q string) string {
	q = strings.TrimSpace(q)
	for {
		switch {
		case strings.HasPrefix(q, "--"):
			idx := strings.Index(q, "\n")
			if idx == -1 {
				return ""
			}
			q = strings.TrimSpace(q[idx+1:])
		case strings.HasPrefix(q, "/*"):
			idx := strings.Index(q, "*/")
			if idx == -1 {
				return ""
			}
			q = strings.TrimSpace(q[idx+2:])
		default:
			return q
		}
	}
}
