package repository

import (
	"context"

	"github.com/jwalitptl/dental-admin/internal/model"
)

// All repository interfaces in one file. The clinic backend implements all
// but ActivityRepository; memory and postgres provide local stores.
type (
	AppointmentRepository interface {
		List(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, error)
		Get(ctx context.Context, id string) (*model.Appointment, error)
		Create(ctx context.Context, appointment *model.Appointment) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) (*model.Appointment, error)
		Patch(ctx context.Context, id string, patch model.AppointmentPatch) error
		Delete(ctx context.Context, id string) error
		Combos(ctx context.Context) (*model.Combos, error)
	}

	PatientRepository interface {
		Get(ctx context.Context, id string) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Create(ctx context.Context, patient *model.Patient) error
		List(ctx context.Context) ([]*model.Patient, error)
	}

	StaffRepository interface {
		List(ctx context.Context) ([]*model.Staff, error)
		Create(ctx context.Context, staff *model.Staff) (*model.Staff, error)
	}

	CatalogRepository interface {
		ListProcedures(ctx context.Context) ([]model.Procedure, error)
	}

	BudgetRepository interface {
		GetBudget(ctx context.Context, id string) (*model.Budget, error)
	}

	ActivityRepository interface {
		Create(ctx context.Context, entry *model.ActivityEntry) error
		List(ctx context.Context, limit int) ([]*model.ActivityEntry, error)
	}
)
