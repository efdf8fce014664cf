package domain

import (
	"fmt"
	"regexp"
)

// ############################################################
// ########### PLANO DECLARATIVO DE MIGRAÇÃO ##################
// ############################################################
//
// Um Plan descreve uma migração completa de forma declarativa: os
// statements de schema, os tipos de entidade (label + chave natural +
// propriedades) e as famílias de relacionamento (tipo, endpoints,
// filtro por discriminador, flag de simetria, mapeamento dinâmico de
// tipo). O engine é único; cada domínio é só dados.

// SourceKind distingue a origem de um conjunto de registros.
type SourceKind string

const (
	SourceCSV   SourceKind = "csv"
	SourceTable SourceKind = "table"
)

// Source aponta para um arquivo delimitado ou uma tabela relacional.
type Source struct {
	Kind SourceKind
	// Name é o nome do arquivo (relativo ao diretório de origem) ou da
	// tabela, conforme o Kind.
	Name string
}

// FieldType define a conversão aplicada ao valor cru da origem antes de
// ser enviado ao grafo.
type FieldType string

const (
	FieldString   FieldType = "string"
	FieldInt      FieldType = "int"
	FieldFloat    FieldType = "float"
	FieldDate     FieldType = "date"
	FieldDateTime FieldType = "datetime"
)

// FieldSpec mapeia uma coluna da origem para uma propriedade do grafo.
type FieldSpec struct {
	// Name é o nome da propriedade no nó/aresta.
	Name string
	// Column é a coluna de origem. Vazio significa "igual a Name".
	Column string
	Type   FieldType
}

// SourceColumn resolve a coluna efetiva de origem.
func (f FieldSpec) SourceColumn() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// EntitySpec descreve um tipo de entidade: nós upsertados pela chave
// natural, com propriedades escalares.
type EntitySpec struct {
	Label      string
	Source     Source
	Key        FieldSpec
	Properties []FieldSpec
}

// EndpointSpec identifica um dos lados de um relacionamento: o label do
// nó alvo e a coluna de origem que carrega a chave dele.
type EndpointSpec struct {
	Label  string
	Column string
}

// Discriminator filtra um stream heterogêneo de registros pelo valor de
// uma coluna antes do load. Registros com outros valores são
// silenciosamente ignorados.
type Discriminator struct {
	Column string
	Value  string
}

// DynamicType resolve o tipo do relacionamento a partir do valor de uma
// coluna, via mapeamento enumerado. Valores fora do mapeamento caem no
// tipo Default em vez de falhar. A resolução acontece antes da
// construção do statement; valores de registro nunca são interpolados
// na posição estrutural da query.
type DynamicType struct {
	Column  string
	Mapping map[string]string
	Default string
}

// Resolve devolve o tipo de relacionamento para um valor de origem.
func (d DynamicType) Resolve(value string) string {
	if mapped, ok := d.Mapping[value]; ok {
		return mapped
	}
	return d.Default
}

// RelationshipSpec descreve uma família de relacionamentos dirigidos.
type RelationshipSpec struct {
	// Type é o tipo fixo da aresta. Ignorado quando DynamicType está
	// presente.
	Type       string
	Source     Source
	Start      EndpointSpec
	End        EndpointSpec
	Properties []FieldSpec

	Discriminator *Discriminator
	// Symmetric cria as duas direções para cada linha de origem, ambas
	// com as mesmas propriedades.
	Symmetric   bool
	DynamicType *DynamicType
}

// Name identifica a família nos relatórios e logs.
func (r RelationshipSpec) Name() string {
	if r.DynamicType != nil {
		return r.DynamicType.Default + "(dynamic)"
	}
	return r.Type
}

// Types lista todos os tipos de aresta que a família pode emitir.
func (r RelationshipSpec) Types() []string {
	if r.DynamicType == nil {
		return []string{r.Type}
	}
	seen := map[string]bool{r.DynamicType.Default: true}
	types := []string{r.DynamicType.Default}
	for _, t := range r.DynamicType.Mapping {
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	return types
}

// Plan é a especificação completa de uma migração.
type Plan struct {
	Name          string
	Schema        []string
	Entities      []EntitySpec
	Relationships []RelationshipSpec
}

// Labels lista os labels de nó na ordem de declaração (que é a ordem de
// carga: todo label referenciado por uma família de relacionamentos é
// carregado antes de qualquer relacionamento).
func (p Plan) Labels() []string {
	labels := make([]string, 0, len(p.Entities))
	for _, e := range p.Entities {
		labels = append(labels, e.Label)
	}
	return labels
}

// RelationshipTypes lista os tipos de aresta que o plano pode emitir,
// sem duplicatas.
func (p Plan) RelationshipTypes() []string {
	seen := map[string]bool{}
	var types []string
	for _, r := range p.Relationships {
		for _, t := range r.Types() {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}
	return types
}

// KeyOf devolve o FieldSpec da chave natural de um label declarado.
func (p Plan) KeyOf(label string) (FieldSpec, bool) {
	for _, e := range p.Entities {
		if e.Label == label {
			return e.Key, true
		}
	}
	return FieldSpec{}, false
}

// HasTableSources informa se alguma origem do plano é relacional.
func (p Plan) HasTableSources() bool {
	for _, e := range p.Entities {
		if e.Source.Kind == SourceTable {
			return true
		}
	}
	for _, r := range p.Relationships {
		if r.Source.Kind == SourceTable {
			return true
		}
	}
	return false
}

// identRegex aceita apenas identificadores seguros para interpolação em
// posição estrutural do Cypher (labels, tipos e nomes de propriedade).
var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reporta se name pode aparecer como label, tipo de
// relacionamento ou nome de propriedade em um statement.
func ValidIdentifier(name string) bool {
	return identRegex.MatchString(name)
}

// Validate confere a consistência estrutural do plano antes de qualquer
// acesso ao store: identificadores seguros, labels sem duplicata e
// endpoints de relacionamento resolvíveis para entidades declaradas.
func (p Plan) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: plan name is required", ErrInvalidPlan)
	}
	if len(p.Entities) == 0 {
		return fmt.Errorf("%w: plan %q declares no entities", ErrInvalidPlan, p.Name)
	}

	declared := map[string]bool{}
	for _, e := range p.Entities {
		if !ValidIdentifier(e.Label) {
			return fmt.Errorf("%w: entity label %q is not a valid identifier", ErrInvalidPlan, e.Label)
		}
		if declared[e.Label] {
			return fmt.Errorf("%w: duplicate entity label %q", ErrInvalidPlan, e.Label)
		}
		declared[e.Label] = true

		if e.Source.Name == "" {
			return fmt.Errorf("%w: entity %q has no source", ErrInvalidPlan, e.Label)
		}
		if err := validateFields(append([]FieldSpec{e.Key}, e.Properties...)); err != nil {
			return fmt.Errorf("%w: entity %q: %s", ErrInvalidPlan, e.Label, err)
		}
	}

	for _, r := range p.Relationships {
		name := r.Name()
		if r.Source.Name == "" {
			return fmt.Errorf("%w: relationship %q has no source", ErrInvalidPlan, name)
		}
		if !declared[r.Start.Label] {
			return fmt.Errorf("%w: relationship %q starts at undeclared label %q", ErrInvalidPlan, name, r.Start.Label)
		}
		if !declared[r.End.Label] {
			return fmt.Errorf("%w: relationship %q ends at undeclared label %q", ErrInvalidPlan, name, r.End.Label)
		}
		if r.Start.Column == "" || r.End.Column == "" {
			return fmt.Errorf("%w: relationship %q must name both endpoint columns", ErrInvalidPlan, name)
		}
		if err := validateFields(r.Properties); err != nil {
			return fmt.Errorf("%w: relationship %q: %s", ErrInvalidPlan, name, err)
		}

		if r.DynamicType != nil {
			if r.Symmetric {
				return fmt.Errorf("%w: relationship %q cannot be both symmetric and dynamic", ErrInvalidPlan, name)
			}
			if r.DynamicType.Column == "" {
				return fmt.Errorf("%w: relationship %q dynamic type needs a source column", ErrInvalidPlan, name)
			}
			for value, relType := range r.DynamicType.Mapping {
				if !ValidIdentifier(relType) {
					return fmt.Errorf("%w: relationship %q maps %q to invalid type %q", ErrInvalidPlan, name, value, relType)
				}
			}
			if !ValidIdentifier(r.DynamicType.Default) {
				return fmt.Errorf("%w: relationship %q has invalid default type %q", ErrInvalidPlan, name, r.DynamicType.Default)
			}
		} else if !ValidIdentifier(r.Type) {
			return fmt.Errorf("%w: relationship type %q is not a valid identifier", ErrInvalidPlan, r.Type)
		}
	}

	return nil
}

func validateFields(fields []FieldSpec) error {
	for _, f := range fields {
		if !ValidIdentifier(f.Name) {
			return fmt.Errorf("field %q is not a valid identifier", f.Name)
		}
	}
	return nil
}
