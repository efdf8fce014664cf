package domain

import (
	"errors"
	"time"
)

var (
	// ErrDependencyUnavailable indica que um backing store não ficou
	// acessível dentro do orçamento de retries. Fatal para o pipeline.
	ErrDependencyUnavailable = errors.New("dependency did not become ready within the retry budget")

	// ErrSchemaConflict indica que um statement de constraint/index falhou
	// por um motivo diferente de "already exists".
	ErrSchemaConflict = errors.New("schema statement rejected by the graph store")

	// ErrMalformedRecord indica um registro de origem sem um campo
	// obrigatório ou com valor que não pôde ser convertido.
	ErrMalformedRecord = errors.New("malformed source record")

	ErrInvalidPlan = errors.New("invalid migration plan")

	ErrUnavailableServer = errors.New("Oops, something unexpected happened. Please try again later.")
)

// ############################################################
// ############ REPRESENTAÇÃO TABULAR DA ORIGEM ###############
// ############################################################

// Row é um registro cru extraído da origem (CSV ou tabela relacional),
// indexado pelo nome da coluna. Valores de CSV chegam como string;
// valores relacionais chegam já tipados pelo driver.
type Row map[string]any

// RecordSet é o snapshot completo de um conjunto de registros de origem.
type RecordSet struct {
	Columns []string
	Rows    []Row
}

// HasColumn verifica a presença de uma coluna no header do snapshot.
func (rs RecordSet) HasColumn(name string) bool {
	for _, c := range rs.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ############################################################
// ############### RESULTADO DE UMA EXECUÇÃO ##################
// ############################################################

// State é o estado corrente do orquestrador do pipeline.
type State string

const (
	StateNotStarted            State = "not_started"
	StateWaitingOnDependencies State = "waiting_on_dependencies"
	StateSchemaReady           State = "schema_ready"
	StateEntitiesLoaded        State = "entities_loaded"
	StateRelationshipsLoaded   State = "relationships_loaded"
	StateStatsReported         State = "stats_reported"
	StateDone                  State = "done"
	StateFailed                State = "failed"
)

// LoadStats agrega os contadores de um loader (de entidades ou de
// relacionamentos). Loaded conta arestas criadas, então um spec
// simétrico reporta o dobro das linhas consumidas.
type LoadStats struct {
	Name    string `json:"name"`
	Offered int    `json:"offered"`
	Loaded  int    `json:"loaded"`
	Skipped int    `json:"skipped"`
}

// StoreCount é a contagem autoritativa lida de volta do grafo na etapa
// de estatísticas, por label de nó ou tipo de relacionamento.
type StoreCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// RunReport é o resumo de uma execução completa do pipeline.
type RunReport struct {
	RunID         string       `json:"run_id"`
	Plan          string       `json:"plan"`
	State         State        `json:"state"`
	Entities      []LoadStats  `json:"entities"`
	Relationships []LoadStats  `json:"relationships"`
	NodeCounts    []StoreCount `json:"node_counts,omitempty"`
	EdgeCounts    []StoreCount `json:"edge_counts,omitempty"`
	StartedAt     time.Time    `json:"started_at"`
	FinishedAt    time.Time    `json:"finished_at"`
	FailedStage   string       `json:"failed_stage,omitempty"`
	Error         string       `json:"error,omitempty"`
}
