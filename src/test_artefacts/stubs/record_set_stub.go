package stubs

import (
	"strconv"

	"graphmigrate/src/domain"

	"github.com/brianvoe/gofakeit/v6"
)

// RecordSetStub monta snapshots de origem para os testes, no mesmo
// formato que os extratores produzem: valores string, como num CSV.
type RecordSetStub struct {
	recordSet domain.RecordSet
}

func NewRecordSetStub(columns ...string) RecordSetStub {
	return RecordSetStub{recordSet: domain.RecordSet{Columns: columns}}
}

// WithRow adiciona uma linha posicional, na ordem das colunas.
func (rs RecordSetStub) WithRow(values ...string) RecordSetStub {
	row := make(domain.Row, len(rs.recordSet.Columns))
	for i, column := range rs.recordSet.Columns {
		if i < len(values) {
			row[column] = values[i]
		}
	}
	rs.recordSet.Rows = append(rs.recordSet.Rows, row)
	return rs
}

func (rs RecordSetStub) Get() domain.RecordSet {
	return rs.recordSet
}

// NewUsersRecordSet gera n usuários com ids sequenciais a partir de 1.
func NewUsersRecordSet(n int) domain.RecordSet {
	stub := NewRecordSetStub("id", "username", "created_at")
	for i := 1; i <= n; i++ {
		stub = stub.WithRow(
			strconv.Itoa(i),
			gofakeit.Username(),
			gofakeit.Date().UTC().Format("2006-01-02T15:04:05"),
		)
	}
	return stub.Get()
}

// NewFollowersRecordSet gera n arestas de follow entre usuários
// existentes (1..maxUserID), sem self-follow.
func NewFollowersRecordSet(n int, maxUserID int) domain.RecordSet {
	stub := NewRecordSetStub("sourceId", "targetId")
	for i := 0; i < n; i++ {
		source := gofakeit.Number(1, maxUserID)
		target := gofakeit.Number(1, maxUserID)
		if target == source {
			target = source%maxUserID + 1
		}
		stub = stub.WithRow(strconv.Itoa(source), strconv.Itoa(target))
	}
	return stub.Get()
}
