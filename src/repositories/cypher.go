package repositories

import (
	"fmt"
	"strings"

	"graphmigrate/src/domain"
)

// Parâmetros reservados nas rows de relacionamento, fora do espaço de
// nomes das propriedades.
const (
	startKeyParam = "__start"
	endKeyParam   = "__end"
)

// buildEntityUpsert monta o statement de upsert em lote de um tipo de
// entidade: MERGE pela chave natural, SET das propriedades escalares.
// Labels e nomes de propriedade vêm do plano validado; valores de
// registro só trafegam como parâmetros.
func buildEntityUpsert(spec domain.EntitySpec) string {
	var b strings.Builder

	fmt.Fprintf(&b, "UNWIND $rows AS row\n")
	fmt.Fprintf(&b, "MERGE (n:`%s` {`%s`: row.`%s`})\n", spec.Label, spec.Key.Name, spec.Key.Name)

	if len(spec.Properties) > 0 {
		assignments := make([]string, len(spec.Properties))
		for i, prop := range spec.Properties {
			assignments[i] = fmt.Sprintf("n.`%s` = row.`%s`", prop.Name, prop.Name)
		}
		fmt.Fprintf(&b, "SET %s\n", strings.Join(assignments, ", "))
	}

	b.WriteString("RETURN count(n) AS count")
	return b.String()
}

// buildRelationshipMerge monta o statement de merge de uma família de
// relacionamentos para um tipo de aresta já resolvido. Os MATCH dos
// endpoints filtram silenciosamente as rows sem nó correspondente, então
// o count retornado reflete só as rows consumidas; a diferença para as
// rows oferecidas vira contagem de skips no loader.
func buildRelationshipMerge(spec domain.RelationshipSpec, relType string, startKey string, endKey string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "UNWIND $rows AS row\n")
	fmt.Fprintf(&b, "MATCH (a:`%s` {`%s`: row.`%s`})\n", spec.Start.Label, startKey, startKeyParam)
	fmt.Fprintf(&b, "MATCH (b:`%s` {`%s`: row.`%s`})\n", spec.End.Label, endKey, endKeyParam)
	fmt.Fprintf(&b, "MERGE (a)-[r:`%s`]->(b)\n", relType)

	if len(spec.Properties) > 0 {
		fmt.Fprintf(&b, "SET %s\n", propertyAssignments("r", spec.Properties))
	}

	if spec.Symmetric {
		fmt.Fprintf(&b, "MERGE (b)-[r2:`%s`]->(a)\n", relType)
		if len(spec.Properties) > 0 {
			fmt.Fprintf(&b, "SET %s\n", propertyAssignments("r2", spec.Properties))
		}
		b.WriteString("RETURN count(r) + count(r2) AS count")
		return b.String()
	}

	b.WriteString("RETURN count(r) AS count")
	return b.String()
}

func propertyAssignments(variable string, properties []domain.FieldSpec) string {
	assignments := make([]string, len(properties))
	for i, prop := range properties {
		assignments[i] = fmt.Sprintf("%s.`%s` = row.`%s`", variable, prop.Name, prop.Name)
	}
	return strings.Join(assignments, ", ")
}
