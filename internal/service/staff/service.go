package staff

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/internal/service/activity"
	"github.com/jwalitptl/dental-admin/pkg/datatable"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
	"github.com/jwalitptl/dental-admin/pkg/validator"
)

// Row is the flattened staff record shown in the staff table
type Row struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Document string `json:"document"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

var roleLabels = map[model.StaffRole]string{
	model.RoleDoctor:       "Doctor",
	model.RoleAssistant:    "Asistente",
	model.RoleReceptionist: "Recepcionista",
	model.RoleAdmin:        "Administrador",
}

func toRow(s *model.Staff) Row {
	r := Row{ID: s.ID, Name: s.FullName(), Role: roleLabels[s.Role], Status: "Activo"}
	if !s.Active {
		r.Status = "Inactivo"
	}
	if p := s.Persona; p != nil {
		r.Document = strings.TrimSpace(p.DocumentType + " " + p.DocumentNumber)
		r.Phone = p.Phone
		r.Email = p.Email
	}
	return r
}

var table = datatable.New(func(r Row) string { return r.ID },
	datatable.Column[Row]{ID: "name", Header: "Nombre", Value: func(r Row) any { return r.Name }, Sortable: true, Filterable: true},
	datatable.Column[Row]{ID: "document", Header: "Documento", Value: func(r Row) any { return r.Document }, Filterable: true, Hideable: true},
	datatable.Column[Row]{ID: "phone", Header: "Teléfono", Value: func(r Row) any { return r.Phone }, Filterable: true, Hideable: true},
	datatable.Column[Row]{ID: "email", Header: "Correo", Value: func(r Row) any { return r.Email }, Sortable: true, Filterable: true, Hideable: true},
	datatable.Column[Row]{ID: "role", Header: "Cargo", Value: func(r Row) any { return r.Role }, Sortable: true, Filterable: true},
	datatable.Column[Row]{ID: "status", Header: "Estado", Value: func(r Row) any { return r.Status }, Sortable: true},
)

type Service struct {
	repo      repository.StaffRepository
	validator *validator.Validator
	activity  activity.Recorder
	logger    zerolog.Logger
}

func NewService(repo repository.StaffRepository, v *validator.Validator, recorder activity.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		validator: v,
		activity:  recorder,
		logger:    logger.With().Str("component", "staff").Logger(),
	}
}

// List fetches all staff and applies the table state taken from q
func (s *Service) List(ctx context.Context, q url.Values) (datatable.Page[Row], error) {
	staff, err := s.repo.List(ctx)
	if err != nil {
		return datatable.Page[Row]{}, err
	}
	rows := make([]Row, 0, len(staff))
	for _, st := range staff {
		rows = append(rows, toRow(st))
	}
	return table.Apply(rows, datatable.StateFromQuery(q, "status")), nil
}

func (s *Service) Create(ctx context.Context, req *model.CreateStaffRequest) (*model.Staff, *httputil.Toast, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, nil, err
	}

	persona := req.Persona
	created, err := s.repo.Create(ctx, &model.Staff{
		Persona:   &persona,
		Role:      req.Role,
		Specialty: strings.TrimSpace(req.Specialty),
		Active:    true,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("role", string(req.Role)).Msg("create staff failed")
		return nil, nil, err
	}
	s.activity.Record(ctx, model.ActivityStaffCreated, "staff", created.ID, created.FullName())

	return created, &httputil.Toast{
		Type:        httputil.ToastSuccess,
		Title:       "Personal registrado",
		Description: created.FullName(),
	}, nil
}
