package model

import (
	"fmt"
	"strings"
	"time"
)

// Persona is the natural-person identity shared by patients and staff.
// Patient and Staff reference it by PersonaID; they never copy it.
type Persona struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"first_name" validate:"required,max=100"`
	LastName       string     `json:"last_name" validate:"required,max=100"`
	DocumentType   string     `json:"document_type" validate:"required,oneof=DNI CE PASAPORTE RUC"`
	DocumentNumber string     `json:"document_number" validate:"required,min=8,max=15"`
	Phone          string     `json:"phone,omitempty" validate:"omitempty,phone"`
	Email          string     `json:"email,omitempty" validate:"omitempty,email"`
	Address        string     `json:"address,omitempty" validate:"max=200"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
}

func (p *Persona) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Surname is the first word of the last name, used in file names
func (p *Persona) Surname() string {
	fields := strings.Fields(p.LastName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Tag is a patient label from a closed set
type Tag string

const (
	TagVIP          Tag = "VIP"
	TagAllergic     Tag = "Alérgico"
	TagOrthodontics Tag = "Ortodoncia"
	TagDebtor       Tag = "Deudor"
	TagNew          Tag = "Nuevo"
	TagFrequent     Tag = "Frecuente"
	TagChild        Tag = "Niño"
	TagSenior       Tag = "Adulto mayor"
)

// Tags lists every allowed patient tag
var Tags = []Tag{TagVIP, TagAllergic, TagOrthodontics, TagDebtor, TagNew, TagFrequent, TagChild, TagSenior}

// ParseTag matches v against the allowed set, ignoring case
func ParseTag(v string) (Tag, error) {
	v = strings.TrimSpace(v)
	for _, t := range Tags {
		if strings.EqualFold(string(t), v) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tag %q", v)
}

type Answer string

const (
	AnswerYes     Answer = "yes"
	AnswerNo      Answer = "no"
	AnswerUnknown Answer = "unknown"
)

type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Questionnaire is the medical history form every patient fills in
var Questionnaire = []Question{
	{"allergies", "¿Es alérgico a algún medicamento?"},
	{"anesthesia", "¿Ha tenido reacciones a la anestesia?"},
	{"hypertension", "¿Sufre de presión alta?"},
	{"diabetes", "¿Tiene diabetes?"},
	{"heart", "¿Padece alguna enfermedad cardiaca?"},
	{"bleeding", "¿Tiene problemas de coagulación?"},
	{"pregnancy", "¿Está embarazada?"},
	{"medication", "¿Toma algún medicamento actualmente?"},
	{"smoker", "¿Fuma?"},
}

func QuestionByID(id string) (Question, bool) {
	for _, q := range Questionnaire {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

type MedicalAnswer struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question,omitempty"`
	Answer     Answer `json:"answer"`
	Detail     string `json:"detail,omitempty"`
}

type MedicalHistory struct {
	Answers   []MedicalAnswer `json:"answers"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
}

// Validate checks every answer targets a known question once
func (h MedicalHistory) Validate() error {
	seen := make(map[string]bool, len(h.Answers))
	for _, a := range h.Answers {
		if _, ok := QuestionByID(a.QuestionID); !ok {
			return fmt.Errorf("unknown question %q", a.QuestionID)
		}
		if seen[a.QuestionID] {
			return fmt.Errorf("question %q answered twice", a.QuestionID)
		}
		seen[a.QuestionID] = true
		switch a.Answer {
		case AnswerYes, AnswerNo, AnswerUnknown:
		default:
			return fmt.Errorf("invalid answer %q for %q", a.Answer, a.QuestionID)
		}
	}
	return nil
}

type Patient struct {
	ID             string         `json:"id"`
	PersonaID      string         `json:"persona_id"`
	Persona        *Persona       `json:"persona,omitempty"`
	Tags           []Tag          `json:"tags"`
	Notes          string         `json:"notes"`
	MedicalHistory MedicalHistory `json:"medical_history"`
}

func (p *Patient) FullName() string {
	if p.Persona == nil {
		return ""
	}
	return p.Persona.FullName()
}

func (p *Patient) HasTag(t Tag) bool {
	for _, existing := range p.Tags {
		if existing == t {
			return true
		}
	}
	return false
}

func (p *Patient) Ref() *PatientRef {
	ref := &PatientRef{ID: p.ID, FullName: p.FullName()}
	if p.Persona != nil {
		ref.Phone = p.Persona.Phone
		ref.Email = p.Persona.Email
	}
	return ref
}

func (p *Patient) Clone() *Patient {
	cp := *p
	cp.Tags = append([]Tag(nil), p.Tags...)
	cp.MedicalHistory.Answers = append([]MedicalAnswer(nil), p.MedicalHistory.Answers...)
	if p.Persona != nil {
		per := *p.Persona
		cp.Persona = &per
	}
	return &cp
}
