package plans

import (
	"fmt"

	"graphmigrate/src/domain"
)

// ByName resolve um plano embarcado pelo nome configurado em
// MIGRATION_PLAN.
func ByName(name string) (domain.Plan, error) {
	switch name {
	case "catalog":
		return Catalog(), nil
	case "social":
		return Social(), nil
	case "streams":
		return Streams(), nil
	default:
		return domain.Plan{}, fmt.Errorf("%w: unknown plan %q (expected catalog, social or streams)", domain.ErrInvalidPlan, name)
	}
}
