package schema

import (
	"errors"
	"fmt"
	"strings"

	"dbmirror/internal/database"
)

// ErrNoColumns marks a table whose catalog reports zero columns; emitting a
// CREATE TABLE with an empty body would be invalid, so translation refuses.
var ErrNoColumns = errors.New("table has no columns")

// QualifierKind selects how a type name is qualified in a column definition.
type QualifierKind int

const (
	// QualifierNone renders the bare type name. Unmapped types land here.
	QualifierNone QualifierKind = iota
	// QualifierLength renders type(N), or type(MAX) on the unbounded sentinel.
	QualifierLength
	// QualifierPrecisionScale renders type(precision,scale).
	QualifierPrecisionScale
)

// RuleSet is the explicit type-name-to-qualifier mapping for one engine,
// keyed by lower-cased catalog type name.
type RuleSet map[string]QualifierKind

var mssqlRules = RuleSet{
	"char":      QualifierLength,
	"nchar":     QualifierLength,
	"varchar":   QualifierLength,
	"nvarchar":  QualifierLength,
	"binary":    QualifierLength,
	"varbinary": QualifierLength,
	"decimal":   QualifierPrecisionScale,
	"numeric":   QualifierPrecisionScale,
}

var postgresRules = RuleSet{
	"character":         QualifierLength,
	"character varying": QualifierLength,
	"char":              QualifierLength,
	"varchar":           QualifierLength,
	"bpchar":            QualifierLength,
	"bit":               QualifierLength,
	"bit varying":       QualifierLength,
	"decimal":           QualifierPrecisionScale,
	"numeric":           QualifierPrecisionScale,
}

// Translator renders CREATE TABLE statements for the target engine from
// source column metadata.
type Translator struct {
	dialect database.Dialect
	rules   RuleSet
}

func NewTranslator(dialect database.Dialect) *Translator {
	rules := postgresRules
	if dialect.Name == database.MSSQL.Name {
		rules = mssqlRules
	}
	return &Translator{dialect: dialect, rules: rules}
}

// CreateStatement builds the full CREATE TABLE text for the target table.
// Column order follows the source catalog order of cols.
func (t *Translator) CreateStatement(target string, cols []Column) (string, error) {
	if len(cols) == 0 {
		return "", fmt.Errorf("cannot create %s: %w", target, ErrNoColumns)
	}

	defs := make([]string, len(cols))
	for i, col := range cols {
		defs[i] = fmt.Sprintf("%s %s", t.dialect.QuoteIdent(col.Name), t.TypeExpression(col))
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", t.dialect.QuoteIdent(target), strings.Join(defs, ", ")), nil
}

// TypeExpression renders the type half of one column definition.
func (t *Translator) TypeExpression(col Column) string {
	switch t.rules[strings.ToLower(col.DataType)] {
	case QualifierLength:
		if col.MaxLength == nil {
			// Unbounded on engines that report no length (postgres text types).
			return col.DataType
		}
		if *col.MaxLength < 0 {
			// The -1 sentinel is how the mssql catalog spells (MAX).
			return col.DataType + "(MAX)"
		}
		return fmt.Sprintf("%s(%d)", col.DataType, *col.MaxLength)
	case QualifierPrecisionScale:
		if col.Precision == nil {
			return col.DataType
		}
		scale := int64(0)
		if col.Scale != nil {
			scale = *col.Scale
		}
		return fmt.Sprintf("%s(%d,%d)", col.DataType, *col.Precision, scale)
	default:
		return col.DataType
	}
}
