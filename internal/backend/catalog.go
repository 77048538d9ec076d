package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jwalitptl/dental-admin/internal/model"
)

func (c *Client) ListProcedures(ctx context.Context) ([]model.Procedure, error) {
	var dtos []model.BackendProcedure
	if err := c.do(ctx, "procedures.list", http.MethodGet, "/procedimientos", nil, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]model.Procedure, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, model.ProcedureFromBackend(d))
	}
	return out, nil
}

func (c *Client) GetBudget(ctx context.Context, id string) (*model.Budget, error) {
	var dto model.BackendBudget
	if err := c.do(ctx, "budgets.get", http.MethodGet, "/presupuestos/"+url.PathEscape(id), nil, nil, &dto); err != nil {
		return nil, err
	}
	return model.BudgetFromBackend(&dto), nil
}
