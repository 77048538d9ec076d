package staff

import (
	"context"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository/mocks"
	"github.com/jwalitptl/dental-admin/internal/service/activity"
	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/validator"
)

func staffMember(id, first, last string, role model.StaffRole, active bool) *model.Staff {
	return &model.Staff{
		ID: id, PersonaID: "p-" + id, Role: role, Active: active,
		Persona: &model.Persona{ID: "p-" + id, FirstName: first, LastName: last, DocumentType: "DNI", DocumentNumber: "4567890" + id},
	}
}

func TestList(t *testing.T) {
	repo := new(mocks.StaffRepository)
	repo.On("List", mock.Anything).Return([]*model.Staff{
		staffMember("1", "Rosa", "Vargas", model.RoleDoctor, true),
		staffMember("2", "Miguel", "Paredes", model.RoleAssistant, true),
		staffMember("3", "Elena", "Cruz", model.RoleDoctor, false),
	}, nil)

	svc := NewService(repo, validator.New(), activity.Nop{}, zerolog.Nop())
	page, err := svc.List(context.Background(), url.Values{"sort": {"name"}, "f_role": {"doctor"}})
	require.NoError(t, err)

	require.Len(t, page.Rows, 2)
	assert.Equal(t, "Elena Cruz", page.Rows[0].Name)
	assert.Equal(t, "Inactivo", page.Rows[0].Status)
	assert.Equal(t, "Rosa Vargas", page.Rows[1].Name)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 10, page.PageSize)
}

func TestCreate(t *testing.T) {
	repo := new(mocks.StaffRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(s *model.Staff) bool {
		return s.Role == model.RoleDoctor && s.Active && s.Persona.FirstName == "Rosa"
	})).Return(staffMember("9", "Rosa", "Vargas", model.RoleDoctor, true), nil)

	svc := NewService(repo, validator.New(), activity.Nop{}, zerolog.Nop())
	created, toast, err := svc.Create(context.Background(), &model.CreateStaffRequest{
		Persona: model.Persona{FirstName: "Rosa", LastName: "Vargas", DocumentType: "DNI", DocumentNumber: "45678901"},
		Role:    model.RoleDoctor,
	})
	require.NoError(t, err)
	assert.Equal(t, "9", created.ID)
	assert.Equal(t, "Rosa Vargas", toast.Description)
	repo.AssertExpectations(t)
}

func TestCreateValidation(t *testing.T) {
	repo := new(mocks.StaffRepository)
	svc := NewService(repo, validator.New(), activity.Nop{}, zerolog.Nop())

	_, _, err := svc.Create(context.Background(), &model.CreateStaffRequest{
		Persona: model.Persona{FirstName: "Rosa", DocumentType: "DNI", DocumentNumber: "123"},
		Role:    "janitor",
	})
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "last_name")
	assert.Contains(t, appErr.Fields, "document_number")
	assert.Contains(t, appErr.Fields, "role")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
