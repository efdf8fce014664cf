package extract

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"graphmigrate/src/domain"
)

// PostgresExtractor materializa o snapshot completo de uma tabela via
// SELECT *. Sem extração incremental: cada execução relê a tabela
// inteira.
type PostgresExtractor struct {
	pool *pgxpool.Pool
}

func NewPostgresExtractor(pool *pgxpool.Pool) *PostgresExtractor {
	return &PostgresExtractor{pool: pool}
}

func (e *PostgresExtractor) Extract(ctx context.Context, source domain.Source) (domain.RecordSet, error) {
	// O nome da tabela vem do plano validado, nunca de dados de registro,
	// mas a checagem de identificador fica aqui como barreira.
	if !domain.ValidIdentifier(source.Name) {
		return domain.RecordSet{}, fmt.Errorf("%w: table name %q is not a valid identifier", domain.ErrInvalidPlan, source.Name)
	}

	rows, err := e.pool.Query(ctx, fmt.Sprintf("SELECT * FROM %s", source.Name))
	if err != nil {
		return domain.RecordSet{}, fmt.Errorf("failed to query table %s: %w", source.Name, err)
	}
	defer rows.Close()

	descriptions := rows.FieldDescriptions()
	columns := make([]string, len(descriptions))
	for i, description := range descriptions {
		columns[i] = description.Name
	}

	recordSet := domain.RecordSet{Columns: columns}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return domain.RecordSet{}, fmt.Errorf("failed to read row from table %s: %w", source.Name, err)
		}

		row := make(domain.Row, len(columns))
		for i, column := range columns {
			row[column] = values[i]
		}
		recordSet.Rows = append(recordSet.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return domain.RecordSet{}, fmt.Errorf("failed to scan table %s: %w", source.Name, err)
	}

	return recordSet, nil
}
