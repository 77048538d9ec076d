package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jwalitptl/dental-admin/internal/model"
)

// PatientStore adapts the client to repository.PatientRepository; the method
// names collide with the appointment ones on Client.
type PatientStore struct{ c *Client }

func (c *Client) Patients() *PatientStore { return &PatientStore{c} }

func (s *PatientStore) Get(ctx context.Context, id string) (*model.Patient, error) {
	var dto model.BackendPatient
	if err := s.c.do(ctx, "patients.get", http.MethodGet, "/pacientes/"+url.PathEscape(id), nil, nil, &dto); err != nil {
		return nil, err
	}
	return model.PatientFromBackend(&dto), nil
}

func (s *PatientStore) List(ctx context.Context) ([]*model.Patient, error) {
	var dtos []model.BackendPatient
	if err := s.c.do(ctx, "patients.list", http.MethodGet, "/pacientes", nil, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]*model.Patient, 0, len(dtos))
	for i := range dtos {
		out = append(out, model.PatientFromBackend(&dtos[i]))
	}
	return out, nil
}

func (s *PatientStore) Create(ctx context.Context, p *model.Patient) error {
	var dto model.BackendPatient
	if err := s.c.do(ctx, "patients.create", http.MethodPost, "/pacientes", nil, model.PatientToBackend(p), &dto); err != nil {
		return err
	}
	if id := dto.IDPaciente.String(); id != "" {
		p.ID = id
	}
	if id := dto.IDPersona.String(); id != "" {
		p.PersonaID = id
	}
	return nil
}

func (s *PatientStore) Update(ctx context.Context, p *model.Patient) error {
	path := "/pacientes/" + url.PathEscape(p.ID)
	return s.c.do(ctx, "patients.update", http.MethodPatch, path, nil, model.PatientToBackend(p), nil)
}

type StaffStore struct{ c *Client }

func (c *Client) Staff() *StaffStore { return &StaffStore{c} }

func (s *StaffStore) List(ctx context.Context) ([]*model.Staff, error) {
	var dtos []model.BackendStaff
	if err := s.c.do(ctx, "staff.list", http.MethodGet, "/personal", nil, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]*model.Staff, 0, len(dtos))
	for i := range dtos {
		out = append(out, model.StaffFromBackend(&dtos[i]))
	}
	return out, nil
}

// Create posts the staff record with its persona; the backend creates the
// persona and links it through idPersona.
func (s *StaffStore) Create(ctx context.Context, staff *model.Staff) (*model.Staff, error) {
	var dto model.BackendStaff
	if err := s.c.do(ctx, "staff.create", http.MethodPost, "/personal", nil, model.StaffToBackend(staff), &dto); err != nil {
		return nil, err
	}
	created := model.StaffFromBackend(&dto)
	if created.ID == "" {
		return staff, nil
	}
	if created.Persona == nil {
		created.Persona = staff.Persona
	}
	return created, nil
}
