// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/dental-admin/internal/model"
)

type AppointmentRepository struct {
	mock.Mock
}

func (m *AppointmentRepository) List(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error) {
	args := m.Called(ctx, filter)
	if v := args.Get(0); v != nil {
		return v.([]*model.Appointment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AppointmentRepository) Get(ctx context.Context, id string) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Appointment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AppointmentRepository) Create(ctx context.Context, a *model.Appointment) (*model.Appointment, error) {
	args := m.Called(ctx, a)
	if v := args.Get(0); v != nil {
		return v.(*model.Appointment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AppointmentRepository) Update(ctx context.Context, a *model.Appointment) (*model.Appointment, error) {
	args := m.Called(ctx, a)
	if v := args.Get(0); v != nil {
		return v.(*model.Appointment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AppointmentRepository) Patch(ctx context.Context, id string, patch model.AppointmentPatch) error {
	return m.Called(ctx, id, patch).Error(0)
}

func (m *AppointmentRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *AppointmentRepository) Combos(ctx context.Context) (*model.Combos, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(*model.Combos), args.Error(1)
	}
	return nil, args.Error(1)
}

type StaffRepository struct {
	mock.Mock
}

func (m *StaffRepository) List(ctx context.Context) ([]*model.Staff, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*model.Staff), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StaffRepository) Create(ctx context.Context, s *model.Staff) (*model.Staff, error) {
	args := m.Called(ctx, s)
	if v := args.Get(0); v != nil {
		return v.(*model.Staff), args.Error(1)
	}
	return nil, args.Error(1)
}

type BudgetRepository struct {
	mock.Mock
}

func (m *BudgetRepository) GetBudget(ctx context.Context, id string) (*model.Budget, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Budget), args.Error(1)
	}
	return nil, args.Error(1)
}

type CatalogRepository struct {
	mock.Mock
}

func (m *CatalogRepository) ListProcedures(ctx context.Context) ([]model.Procedure, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]model.Procedure), args.Error(1)
	}
	return nil, args.Error(1)
}
