package estate

import (
	"context"

	"estateflow/server/internal/models"
)

// SaleSink receives sale events after the sale transaction has committed.
// Delivery is best-effort: a failing sink is logged, never surfaced to the
// caller, and never rolls back the sale.
type SaleSink interface {
	Push(event models.SaleEvent) error
}

// CurrentUserFunc supplies the acting user, used as the default seller when
// a property is created without one. Injected so tests can stub it.
type CurrentUserFunc func(ctx context.Context) int64
