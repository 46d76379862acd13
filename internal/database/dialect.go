package database

import (
	"fmt"
	"strings"

	"dbmirror/internal/config"
)

// Dialect covers the two places the engines disagree on SQL spelling:
// bind-parameter placeholders and identifier quoting.
type Dialect struct {
	Name string

	quoteStart string
	quoteEnd   string
	escapedEnd string
	param      func(n int) string
}

var (
	MSSQL = Dialect{
		Name:       config.TypeMSSQL,
		quoteStart: "[",
		quoteEnd:   "]",
		escapedEnd: "]]",
		param:      func(n int) string { return fmt.Sprintf("@p%d", n) },
	}

	Postgres = Dialect{
		Name:       config.TypePostgres,
		quoteStart: `"`,
		quoteEnd:   `"`,
		escapedEnd: `""`,
		param:      func(n int) string { return fmt.Sprintf("$%d", n) },
	}
)

func DialectFor(engineType string) (Dialect, error) {
	switch engineType {
	case config.TypeMSSQL:
		return MSSQL, nil
	case config.TypePostgres:
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database type: %s", engineType)
	}
}

// QuoteIdent quotes a single identifier, escaping any embedded closing quote.
func (d Dialect) QuoteIdent(name string) string {
	return d.quoteStart + strings.ReplaceAll(name, d.quoteEnd, d.escapedEnd) + d.quoteEnd
}

// Placeholder renders the bind parameter for 1-based position n.
func (d Dialect) Placeholder(n int) string {
	return d.param(n)
}
