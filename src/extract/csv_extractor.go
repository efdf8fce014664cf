package extract

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"graphmigrate/src/domain"
)

// CSVExtractor lê snapshots completos de arquivos delimitados com header
// fixo. Os valores permanecem strings; a tipagem por FieldSpec acontece
// na preparação do load.
type CSVExtractor struct {
	dir string
}

func NewCSVExtractor(dir string) *CSVExtractor {
	return &CSVExtractor{dir: dir}
}

func (e *CSVExtractor) Extract(ctx context.Context, source domain.Source) (domain.RecordSet, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecordSet{}, err
	}

	path := filepath.Join(e.dir, source.Name)
	file, err := os.Open(path)
	if err != nil {
		return domain.RecordSet{}, fmt.Errorf("failed to open source file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.RecordSet{}, fmt.Errorf("%w: source file %s has no header", domain.ErrMalformedRecord, source.Name)
		}
		return domain.RecordSet{}, fmt.Errorf("failed to read header of %s: %w", source.Name, err)
	}

	recordSet := domain.RecordSet{Columns: header}

	for line := 2; ; line++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// O reader já rejeita linhas com contagem de campos diferente
			// do header, o que para nós é registro malformado.
			return domain.RecordSet{}, fmt.Errorf("%w: %s line %d: %v", domain.ErrMalformedRecord, source.Name, line, err)
		}

		row := make(domain.Row, len(header))
		for i, column := range header {
			row[column] = fields[i]
		}
		recordSet.Rows = append(recordSet.Rows, row)
	}

	return recordSet, nil
}
