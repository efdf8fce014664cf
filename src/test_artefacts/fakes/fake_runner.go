package fakes

import (
	"context"
	"strings"
	"sync"
)

// Call registra uma execução recebida pelo runner fake.
type Call struct {
	Method string // "Run", "Read" ou "Exec"
	Cypher string
	Params map[string]any
}

// Rows extrai o batch UNWIND dos parâmetros da chamada, se houver.
func (c Call) Rows() []map[string]any {
	rows, _ := c.Params["rows"].([]map[string]any)
	return rows
}

// FakeGraphRunner implementa o runner do grafo em memória para testes.
// Por padrão escritas UNWIND respondem com count == len(rows) (todo
// batch casa); scripts por fragmento de cypher sobrescrevem a resposta.
type FakeGraphRunner struct {
	mu    sync.Mutex
	calls []Call

	scriptedRows map[string][]map[string]any
	scriptedErrs map[string]error
	execErr      error
}

func NewFakeGraphRunner() *FakeGraphRunner {
	return &FakeGraphRunner{
		scriptedRows: make(map[string][]map[string]any),
		scriptedErrs: make(map[string]error),
	}
}

// ScriptRows fixa a resposta para qualquer cypher que contenha fragment.
func (f *FakeGraphRunner) ScriptRows(fragment string, rows []map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scriptedRows[fragment] = rows
}

// ScriptError fixa um erro para qualquer cypher que contenha fragment.
func (f *FakeGraphRunner) ScriptError(fragment string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scriptedErrs[fragment] = err
}

// ScriptExecError faz todas as chamadas Exec falharem.
func (f *FakeGraphRunner) ScriptExecError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execErr = err
}

func (f *FakeGraphRunner) Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	return f.record("Run", cypher, params)
}

func (f *FakeGraphRunner) Read(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	return f.record("Read", cypher, params)
}

func (f *FakeGraphRunner) Exec(ctx context.Context, cypher string, params map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Method: "Exec", Cypher: cypher, Params: params})

	for fragment, err := range f.scriptedErrs {
		if strings.Contains(cypher, fragment) {
			return err
		}
	}
	return f.execErr
}

// Calls retorna uma cópia das chamadas registradas, na ordem recebida.
func (f *FakeGraphRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()

	calls := make([]Call, len(f.calls))
	copy(calls, f.calls)
	return calls
}

// CallsContaining filtra as chamadas cujo cypher contém fragment.
func (f *FakeGraphRunner) CallsContaining(fragment string) []Call {
	var matched []Call
	for _, call := range f.Calls() {
		if strings.Contains(call.Cypher, fragment) {
			matched = append(matched, call)
		}
	}
	return matched
}

func (f *FakeGraphRunner) record(method string, cypher string, params map[string]any) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Method: method, Cypher: cypher, Params: params})

	for fragment, err := range f.scriptedErrs {
		if strings.Contains(cypher, fragment) {
			return nil, err
		}
	}
	for fragment, rows := range f.scriptedRows {
		if strings.Contains(cypher, fragment) {
			return rows, nil
		}
	}

	// Escritas em batch respondem o count do próprio batch; leituras sem
	// script respondem vazio.
	if rows, ok := params["rows"].([]map[string]any); ok {
		count := int64(len(rows))
		if strings.Contains(cypher, "count(r) + count(r2)") {
			count *= 2
		}
		return []map[string]any{{"count": count}}, nil
	}
	if strings.Contains(cypher, "RETURN count(") {
		return []map[string]any{{"count": int64(0)}}, nil
	}
	return nil, nil
}
