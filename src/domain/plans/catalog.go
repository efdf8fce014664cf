package plans

import "graphmigrate/src/domain"

// Catalog migra o schema relacional de e-commerce (categorias, produtos,
// clientes, pedidos e eventos de navegação) para o grafo. É o único
// plano com origem relacional; as demais origens são arquivos CSV.
func Catalog() domain.Plan {
	return domain.Plan{
		Name: "catalog",
		Schema: []string{
			"CREATE CONSTRAINT category_id_unique IF NOT EXISTS FOR (c:Category) REQUIRE c.id IS UNIQUE",
			"CREATE CONSTRAINT product_id_unique IF NOT EXISTS FOR (p:Product) REQUIRE p.id IS UNIQUE",
			"CREATE CONSTRAINT customer_id_unique IF NOT EXISTS FOR (c:Customer) REQUIRE c.id IS UNIQUE",
			"CREATE CONSTRAINT order_id_unique IF NOT EXISTS FOR (o:Order) REQUIRE o.id IS UNIQUE",
			"CREATE INDEX product_name_idx IF NOT EXISTS FOR (p:Product) ON (p.name)",
			"CREATE INDEX order_date_idx IF NOT EXISTS FOR (o:Order) ON (o.orderDate)",
		},
		Entities: []domain.EntitySpec{
			{
				Label:  "Category",
				Source: domain.Source{Kind: domain.SourceTable, Name: "categories"},
				Key:    domain.FieldSpec{Name: "id", Column: "category_id", Type: domain.FieldInt},
				Properties: []domain.FieldSpec{
					{Name: "name", Type: domain.FieldString},
				},
			},
			{
				Label:  "Product",
				Source: domain.Source{Kind: domain.SourceTable, Name: "products"},
				Key:    domain.FieldSpec{Name: "id", Column: "product_id", Type: domain.FieldInt},
				Properties: []domain.FieldSpec{
					{Name: "name", Type: domain.FieldString},
					{Name: "price", Type: domain.FieldFloat},
				},
			},
			{
				Label:  "Customer",
				Source: domain.Source{Kind: domain.SourceTable, Name: "customers"},
				Key:    domain.FieldSpec{Name: "id", Column: "customer_id", Type: domain.FieldInt},
				Properties: []domain.FieldSpec{
					{Name: "name", Type: domain.FieldString},
					{Name: "joinDate", Column: "join_date", Type: domain.FieldDate},
				},
			},
			{
				Label:  "Order",
				Source: domain.Source{Kind: domain.SourceTable, Name: "orders"},
				Key:    domain.FieldSpec{Name: "id", Column: "order_id", Type: domain.FieldInt},
				Properties: []domain.FieldSpec{
					{Name: "orderDate", Column: "order_date", Type: domain.FieldDateTime},
				},
			},
		},
		Relationships: []domain.RelationshipSpec{
			{
				Type:   "IN_CATEGORY",
				Source: domain.Source{Kind: domain.SourceTable, Name: "products"},
				Start:  domain.EndpointSpec{Label: "Product", Column: "product_id"},
				End:    domain.EndpointSpec{Label: "Category", Column: "category_id"},
			},
			{
				Type:   "PLACED",
				Source: domain.Source{Kind: domain.SourceTable, Name: "orders"},
				Start:  domain.EndpointSpec{Label: "Customer", Column: "customer_id"},
				End:    domain.EndpointSpec{Label: "Order", Column: "order_id"},
			},
			{
				Type:   "CONTAINS",
				Source: domain.Source{Kind: domain.SourceTable, Name: "order_items"},
				Start:  domain.EndpointSpec{Label: "Order", Column: "order_id"},
				End:    domain.EndpointSpec{Label: "Product", Column: "product_id"},
				Properties: []domain.FieldSpec{
					{Name: "quantity", Type: domain.FieldInt},
				},
			},
			{
				// Eventos de navegação: o tipo da aresta vem do valor de
				// event_type; valores desconhecidos caem em OBSERVED.
				Source: domain.Source{Kind: domain.SourceTable, Name: "events"},
				Start:  domain.EndpointSpec{Label: "Customer", Column: "customer_id"},
				End:    domain.EndpointSpec{Label: "Product", Column: "product_id"},
				Properties: []domain.FieldSpec{
					{Name: "occurredAt", Column: "occurred_at", Type: domain.FieldDateTime},
				},
				DynamicType: &domain.DynamicType{
					Column: "event_type",
					Mapping: map[string]string{
						"view":     "VIEW",
						"cart":     "ADDED_TO_CART",
						"purchase": "PURCHASED",
					},
					Default: "OBSERVED",
				},
			},
		},
	}
}
