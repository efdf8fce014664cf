package repositories

import "context"

// GraphRunner é a fronteira com o graph store: um statement
// parametrizado entra, uma sequência de registros sai. A implementação
// real fica em infra/neo4j; os testes usam um fake roteirizado.
type GraphRunner interface {
	// Run executa em transação de escrita gerenciada.
	Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
	// Read executa em transação de leitura.
	Read(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
	// Exec executa em auto-commit (statements de schema).
	Exec(ctx context.Context, cypher string, params map[string]any) error
}
