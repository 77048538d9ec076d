// Package memory holds in-process stores used for demos and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/pkg/errors"
)

// PatientStore is a mutex-guarded patient repository. Reads and writes copy,
// so callers never share state with the store.
type PatientStore struct {
	mu       sync.RWMutex
	patients map[string]*model.Patient
	nextID   int
}

func NewPatientStore(seed ...*model.Patient) *PatientStore {
	s := &PatientStore{patients: make(map[string]*model.Patient)}
	for _, p := range seed {
		s.patients[p.ID] = p.Clone()
		if n, err := strconv.Atoi(p.ID); err == nil && n > s.nextID {
			s.nextID = n
		}
	}
	return s
}

func (s *PatientStore) Get(_ context.Context, id string) (*model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.patients[id]
	if !ok {
		return nil, errors.NotFound("patient", nil)
	}
	return p.Clone(), nil
}

func (s *PatientStore) Update(_ context.Context, p *model.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.patients[p.ID]; !ok {
		return errors.NotFound("patient", nil)
	}
	s.patients[p.ID] = p.Clone()
	return nil
}

func (s *PatientStore) Create(_ context.Context, p *model.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		s.nextID++
		p.ID = strconv.Itoa(s.nextID)
	}
	if _, ok := s.patients[p.ID]; ok {
		return errors.Conflict(fmt.Sprintf("patient %s already exists", p.ID), nil)
	}
	if p.Persona != nil && p.PersonaID == "" {
		p.PersonaID = p.Persona.ID
	}
	s.patients[p.ID] = p.Clone()
	return nil
}

func (s *PatientStore) List(_ context.Context) ([]*model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName() < out[j].FullName() })
	return out, nil
}

// DemoPatients seeds the demo store
func DemoPatients() []*model.Patient {
	birth := time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC)
	return []*model.Patient{
		{
			ID: "1", PersonaID: "p-1",
			Persona: &model.Persona{
				ID: "p-1", FirstName: "Ana", LastName: "Torres Quispe",
				DocumentType: "DNI", DocumentNumber: "45678912",
				Phone: "987654321", Email: "ana.torres@example.com", BirthDate: &birth,
			},
			Tags:  []model.Tag{model.TagFrequent},
			Notes: "Prefiere citas por la mañana.",
		},
		{
			ID: "2", PersonaID: "p-2",
			Persona: &model.Persona{
				ID: "p-2", FirstName: "Carlos", LastName: "Mendoza Ríos",
				DocumentType: "DNI", DocumentNumber: "41239876",
				Phone: "912345678", Email: "carlos.mendoza@example.com",
			},
			Tags: []model.Tag{model.TagOrthodontics, model.TagDebtor},
		},
		{
			ID: "3", PersonaID: "p-3",
			Persona: &model.Persona{
				ID: "p-3", FirstName: "Lucía", LastName: "Huamán Soto",
				DocumentType: "DNI", DocumentNumber: "70123456",
				Phone: "956789123",
			},
			Tags: []model.Tag{model.TagChild, model.TagNew},
		},
	}
}
