package repositories

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"graphmigrate/src/domain"
)

// Formatos aceitos para timestamps "ISO-ish" vindos de CSV.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// convertValue normaliza um valor cru da origem para o tipo declarado no
// FieldSpec. Valores de CSV chegam como string e são parseados; valores
// relacionais chegam tipados pelo driver e só são normalizados.
func convertValue(value any, fieldType domain.FieldType) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch fieldType {
	case domain.FieldString:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return fmt.Sprintf("%v", value), nil

	case domain.FieldInt:
		switch v := value.(type) {
		case int64:
			return v, nil
		case int32:
			return int64(v), nil
		case int:
			return int64(v), nil
		case string:
			parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("value %q is not an integer", v)
			}
			return parsed, nil
		}

	case domain.FieldFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case int32:
			return float64(v), nil
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("value %q is not a number", v)
			}
			return parsed, nil
		}

	case domain.FieldDate:
		switch v := value.(type) {
		case time.Time:
			return neo4j.DateOf(v), nil
		case dbtype.Date:
			return v, nil
		case string:
			parsed, err := time.Parse("2006-01-02", strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("value %q is not a date (want YYYY-MM-DD)", v)
			}
			return neo4j.DateOf(parsed), nil
		}

	case domain.FieldDateTime:
		switch v := value.(type) {
		case time.Time:
			return v, nil
		case string:
			trimmed := strings.TrimSpace(v)
			for _, layout := range dateTimeLayouts {
				if parsed, err := time.Parse(layout, trimmed); err == nil {
					return parsed, nil
				}
			}
			return nil, fmt.Errorf("value %q is not a timestamp", v)
		}
	}

	return nil, fmt.Errorf("value %v (%T) cannot be converted to %s", value, value, fieldType)
}

// convertField extrai e converte uma coluna de um registro. required
// distingue campo ausente/nulo entre erro e nil.
func convertField(row domain.Row, field domain.FieldSpec, required bool) (any, error) {
	raw, present := row[field.SourceColumn()]
	if !present || raw == nil || raw == "" {
		if required {
			return nil, fmt.Errorf("missing required field %q", field.SourceColumn())
		}
		return nil, nil
	}

	converted, err := convertValue(raw, field.Type)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", field.SourceColumn(), err)
	}
	return converted, nil
}
