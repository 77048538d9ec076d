// Package patient edits the detail tabs of a patient record: tags, notes
// and medical history.
package patient

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/internal/service/activity"
	"github.com/jwalitptl/dental-admin/pkg/datatable"
	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
)

const maxNotes = 2000

// Result is the updated patient plus the notification to show
type Result struct {
	Patient *model.Patient  `json:"patient"`
	Toast   *httputil.Toast `json:"toast"`
}

type Service struct {
	repo     repository.PatientRepository
	activity activity.Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(repo repository.PatientRepository, recorder activity.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		activity: recorder,
		logger:   logger.With().Str("component", "patient").Logger(),
		now:      time.Now,
	}
}

func (s *Service) Get(ctx context.Context, id string) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}

// Row is the flattened patient record shown in the patient table
type Row struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Document string `json:"document"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Tags     string `json:"tags"`
}

func toRow(p *model.Patient) Row {
	r := Row{ID: p.ID, Name: p.FullName()}
	if per := p.Persona; per != nil {
		r.Document = strings.TrimSpace(per.DocumentType + " " + per.DocumentNumber)
		r.Phone = per.Phone
		r.Email = per.Email
	}
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, string(t))
	}
	r.Tags = strings.Join(tags, ", ")
	return r
}

var table = datatable.New(func(r Row) string { return r.ID },
	datatable.Column[Row]{ID: "name", Header: "Paciente", Value: func(r Row) any { return r.Name }, Sortable: true, Filterable: true},
	datatable.Column[Row]{ID: "document", Header: "Documento", Value: func(r Row) any { return r.Document }, Sortable: true, Filterable: true, Hideable: true},
	datatable.Column[Row]{ID: "phone", Header: "Teléfono", Value: func(r Row) any { return r.Phone }, Filterable: true, Hideable: true},
	datatable.Column[Row]{ID: "email", Header: "Correo", Value: func(r Row) any { return r.Email }, Filterable: true, Hideable: true},
	datatable.Column[Row]{ID: "tags", Header: "Etiquetas", Value: func(r Row) any { return r.Tags }, Filterable: true, Hideable: true},
)

// List applies the table state taken from q to every patient
func (s *Service) List(ctx context.Context, q url.Values) (datatable.Page[Row], error) {
	patients, err := s.repo.List(ctx)
	if err != nil {
		return datatable.Page[Row]{}, err
	}
	rows := make([]Row, 0, len(patients))
	for _, p := range patients {
		rows = append(rows, toRow(p))
	}
	return table.Apply(rows, datatable.StateFromQuery(q, "")), nil
}

// AddTag rejects tags outside the closed set and duplicates; on rejection the
// stored tag list is untouched.
func (s *Service) AddTag(ctx context.Context, id, raw string) (*Result, error) {
	tag, err := model.ParseTag(raw)
	if err != nil {
		return nil, errors.Validation("Etiqueta inválida", map[string]string{"tag": "Seleccione una etiqueta de la lista"})
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.HasTag(tag) {
		return nil, errors.Conflict("Etiqueta duplicada", nil)
	}

	p.Tags = append(p.Tags, tag)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, model.ActivityTagAdded, "patient", id, string(tag))

	return &Result{Patient: p, Toast: &httputil.Toast{
		Type:        httputil.ToastSuccess,
		Title:       "Etiqueta agregada",
		Description: string(tag),
	}}, nil
}

func (s *Service) RemoveTag(ctx context.Context, id, raw string) (*Result, error) {
	tag, err := model.ParseTag(raw)
	if err != nil {
		return nil, errors.Validation("Etiqueta inválida", map[string]string{"tag": "Seleccione una etiqueta de la lista"})
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	kept := p.Tags[:0]
	for _, t := range p.Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(p.Tags) {
		return nil, errors.NotFound("tag", nil)
	}
	p.Tags = kept

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, model.ActivityTagRemoved, "patient", id, string(tag))

	return &Result{Patient: p, Toast: &httputil.Toast{
		Type:  httputil.ToastSuccess,
		Title: "Etiqueta eliminada",
	}}, nil
}

func (s *Service) UpdateNotes(ctx context.Context, id, notes string) (*Result, error) {
	notes = strings.TrimSpace(notes)
	if len([]rune(notes)) > maxNotes {
		return nil, errors.Validation("Las notas son demasiado largas", map[string]string{"notes": "Máximo 2000 caracteres"})
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Notes = notes
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, model.ActivityNotesUpdated, "patient", id, "")

	return &Result{Patient: p, Toast: &httputil.Toast{Type: httputil.ToastSuccess, Title: "Notas guardadas"}}, nil
}

// UpdateMedicalHistory replaces the answers; question texts are filled in
// from the questionnaire.
func (s *Service) UpdateMedicalHistory(ctx context.Context, id string, answers []model.MedicalAnswer) (*Result, error) {
	history := model.MedicalHistory{Answers: make([]model.MedicalAnswer, 0, len(answers))}
	for _, a := range answers {
		if a.Answer == "" {
			a.Answer = model.AnswerUnknown
		}
		if q, ok := model.QuestionByID(a.QuestionID); ok {
			a.Question = q.Text
		}
		history.Answers = append(history.Answers, a)
	}
	if err := history.Validate(); err != nil {
		return nil, errors.Validation(err.Error(), map[string]string{"answers": err.Error()})
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	history.UpdatedAt = s.now().UTC()
	p.MedicalHistory = history
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, model.ActivityHistoryUpdate, "patient", id, "")

	return &Result{Patient: p, Toast: &httputil.Toast{Type: httputil.ToastSuccess, Title: "Historia clínica actualizada"}}, nil
}
