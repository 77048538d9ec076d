package model

import (
	"fmt"
	"time"
)

// Backend DTOs mirror the field names of the clinic REST API. Every entity
// crosses the boundary through the From*/To* functions below.

type BackendPersona struct {
	IDPersona       ID     `json:"idPersona"`
	Nombres         string `json:"nombres"`
	Apellidos       string `json:"apellidos"`
	TipoDocumento   string `json:"tipoDocumento"`
	NumeroDocumento string `json:"numeroDocumento"`
	Telefono        string `json:"telefono,omitempty"`
	Correo          string `json:"correo,omitempty"`
	Direccion       string `json:"direccion,omitempty"`
	FechaNacimiento string `json:"fechaNacimiento,omitempty"`
}

type BackendMedicalAnswer struct {
	IDPregunta string `json:"idPregunta"`
	Pregunta   string `json:"pregunta,omitempty"`
	Respuesta  string `json:"respuesta"`
	Detalle    string `json:"detalle,omitempty"`
}

type BackendMedicalHistory struct {
	Respuestas  []BackendMedicalAnswer `json:"respuestas"`
	Actualizado *time.Time             `json:"actualizado,omitempty"`
}

type BackendPatient struct {
	IDPaciente     ID                    `json:"idPaciente"`
	IDPersona      ID                    `json:"idPersona"`
	Persona        *BackendPersona       `json:"persona,omitempty"`
	Etiquetas      []string              `json:"etiquetas"`
	Notas          string                `json:"notas"`
	HistoriaMedica BackendMedicalHistory `json:"historiaMedica"`
}

type BackendStaff struct {
	IDPersonal   ID              `json:"idPersonal"`
	IDPersona    ID              `json:"idPersona"`
	Persona      *BackendPersona `json:"persona,omitempty"`
	Cargo        string          `json:"cargo"`
	Especialidad string          `json:"especialidad,omitempty"`
	Activo       bool            `json:"activo"`
}

type BackendDoctor struct {
	IDPersonal     ID     `json:"idPersonal"`
	NombreCompleto string `json:"nombreCompleto"`
}

type BackendCombos struct {
	Doctores []BackendDoctor `json:"doctores"`
	Motivos  []BackendReason `json:"motivos,omitempty"`
}

type BackendReason struct {
	IDMotivo    ID     `json:"idMotivo"`
	Descripcion string `json:"descripcion"`
}

type BackendProcedure struct {
	IDProcedimiento ID     `json:"idProcedimiento"`
	Nombre          string `json:"nombre"`
	Descripcion     string `json:"descripcion,omitempty"`
	PrecioBase      Money  `json:"precioBase"`
}

type BackendAppointmentPatient struct {
	IDPaciente ID              `json:"idPaciente"`
	Persona    *BackendPersona `json:"persona,omitempty"`
}

type BackendAppointment struct {
	IDCita         ID                         `json:"idCita,omitempty"`
	Titulo         string                     `json:"titulo,omitempty"`
	Fecha          string                     `json:"fecha"`
	HoraInicio     string                     `json:"horaInicio"`
	HoraFin        string                     `json:"horaFin"`
	TodoElDia      bool                       `json:"todoElDia,omitempty"`
	IDPaciente     ID                         `json:"idPaciente"`
	Paciente       *BackendAppointmentPatient `json:"paciente,omitempty"`
	IDPersonal     ID                         `json:"idPersonal"`
	Doctor         *BackendDoctor             `json:"doctor,omitempty"`
	IDMotivo       ID                         `json:"idMotivo,omitempty"`
	Motivo         *BackendReason             `json:"motivo,omitempty"`
	Procedimientos []BackendProcedure         `json:"procedimientos,omitempty"`
	Estado         string                     `json:"estado"`
	Observaciones  string                     `json:"observaciones,omitempty"`
	Color          string                     `json:"color,omitempty"`
}

// BackendAppointmentPatch is the PATCH /appointments/:id body
type BackendAppointmentPatch struct {
	Fecha            *string `json:"fecha,omitempty"`
	HoraInicio       *string `json:"horaInicio,omitempty"`
	HoraFin          *string `json:"horaFin,omitempty"`
	IDPersonal       *string `json:"idPersonal,omitempty"`
	Estado           *string `json:"estado,omitempty"`
	Observaciones    *string `json:"observaciones,omitempty"`
	EliminarOriginal *bool   `json:"eliminarOriginal,omitempty"`
}

type BackendBudgetItem struct {
	IDProcedimiento ID     `json:"idProcedimiento"`
	Procedimiento   string `json:"procedimiento"`
	PrecioUnitario  Money  `json:"precioUnitario"`
	Cantidad        int    `json:"cantidad"`
	MontoPagado     Money  `json:"montoPagado"`
}

type BackendBudget struct {
	IDPresupuesto ID                         `json:"idPresupuesto"`
	IDPaciente    ID                         `json:"idPaciente"`
	Paciente      *BackendAppointmentPatient `json:"paciente,omitempty"`
	FechaCreacion time.Time                  `json:"fechaCreacion"`
	Detalles      []BackendBudgetItem        `json:"detalles"`
}

type BackendLoginResponse struct {
	Token    string `json:"token"`
	UUID     string `json:"uuid"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

func PersonaFromBackend(b *BackendPersona) *Persona {
	if b == nil {
		return nil
	}
	p := &Persona{
		ID:             b.IDPersona.String(),
		FirstName:      b.Nombres,
		LastName:       b.Apellidos,
		DocumentType:   b.TipoDocumento,
		DocumentNumber: b.NumeroDocumento,
		Phone:          b.Telefono,
		Email:          b.Correo,
		Address:        b.Direccion,
	}
	if b.FechaNacimiento != "" {
		if t, err := time.Parse(dateLayout, b.FechaNacimiento); err == nil {
			p.BirthDate = &t
		}
	}
	return p
}

func PersonaToBackend(p *Persona) *BackendPersona {
	if p == nil {
		return nil
	}
	b := &BackendPersona{
		IDPersona:       ID(p.ID),
		Nombres:         p.FirstName,
		Apellidos:       p.LastName,
		TipoDocumento:   p.DocumentType,
		NumeroDocumento: p.DocumentNumber,
		Telefono:        p.Phone,
		Correo:          p.Email,
		Direccion:       p.Address,
	}
	if p.BirthDate != nil {
		b.FechaNacimiento = p.BirthDate.Format(dateLayout)
	}
	return b
}

func PatientFromBackend(b *BackendPatient) *Patient {
	p := &Patient{
		ID:        b.IDPaciente.String(),
		PersonaID: b.IDPersona.String(),
		Persona:   PersonaFromBackend(b.Persona),
		Notes:     b.Notas,
		Tags:      []Tag{},
	}
	if p.PersonaID == "" && p.Persona != nil {
		p.PersonaID = p.Persona.ID
	}
	for _, raw := range b.Etiquetas {
		// tags outside the closed set are dropped
		if t, err := ParseTag(raw); err == nil && !p.HasTag(t) {
			p.Tags = append(p.Tags, t)
		}
	}
	for _, a := range b.HistoriaMedica.Respuestas {
		p.MedicalHistory.Answers = append(p.MedicalHistory.Answers, MedicalAnswer{
			QuestionID: a.IDPregunta,
			Question:   a.Pregunta,
			Answer:     answerFromBackend(a.Respuesta),
			Detail:     a.Detalle,
		})
	}
	if b.HistoriaMedica.Actualizado != nil {
		p.MedicalHistory.UpdatedAt = *b.HistoriaMedica.Actualizado
	}
	return p
}

func PatientToBackend(p *Patient) *BackendPatient {
	b := &BackendPatient{
		IDPaciente: ID(p.ID),
		IDPersona:  ID(p.PersonaID),
		Persona:    PersonaToBackend(p.Persona),
		Notas:      p.Notes,
		Etiquetas:  make([]string, 0, len(p.Tags)),
	}
	for _, t := range p.Tags {
		b.Etiquetas = append(b.Etiquetas, string(t))
	}
	for _, a := range p.MedicalHistory.Answers {
		b.HistoriaMedica.Respuestas = append(b.HistoriaMedica.Respuestas, BackendMedicalAnswer{
			IDPregunta: a.QuestionID,
			Pregunta:   a.Question,
			Respuesta:  answerToBackend(a.Answer),
			Detalle:    a.Detail,
		})
	}
	if !p.MedicalHistory.UpdatedAt.IsZero() {
		t := p.MedicalHistory.UpdatedAt
		b.HistoriaMedica.Actualizado = &t
	}
	return b
}

func answerFromBackend(v string) Answer {
	switch v {
	case "SI", "si", "Sí", "SÍ", "yes":
		return AnswerYes
	case "NO", "no":
		return AnswerNo
	default:
		return AnswerUnknown
	}
}

func answerToBackend(a Answer) string {
	switch a {
	case AnswerYes:
		return "SI"
	case AnswerNo:
		return "NO"
	default:
		return "NS"
	}
}

var roleCodes = map[string]StaffRole{
	"DOCTOR":        RoleDoctor,
	"ASISTENTE":     RoleAssistant,
	"RECEPCIONISTA": RoleReceptionist,
	"ADMINISTRADOR": RoleAdmin,
}

func StaffFromBackend(b *BackendStaff) *Staff {
	s := &Staff{
		ID:        b.IDPersonal.String(),
		PersonaID: b.IDPersona.String(),
		Persona:   PersonaFromBackend(b.Persona),
		Role:      roleCodes[b.Cargo],
		Specialty: b.Especialidad,
		Active:    b.Activo,
	}
	if s.Role == "" {
		s.Role = StaffRole(b.Cargo)
	}
	if s.PersonaID == "" && s.Persona != nil {
		s.PersonaID = s.Persona.ID
	}
	return s
}

func StaffToBackend(s *Staff) *BackendStaff {
	cargo := string(s.Role)
	for code, role := range roleCodes {
		if role == s.Role {
			cargo = code
			break
		}
	}
	return &BackendStaff{
		IDPersonal:   ID(s.ID),
		IDPersona:    ID(s.PersonaID),
		Persona:      PersonaToBackend(s.Persona),
		Cargo:        cargo,
		Especialidad: s.Specialty,
		Activo:       s.Active,
	}
}

func DoctorFromBackend(b BackendDoctor) Doctor {
	return Doctor{ID: b.IDPersonal.String(), Name: b.NombreCompleto}
}

func ProcedureFromBackend(b BackendProcedure) Procedure {
	return Procedure{
		ID:          b.IDProcedimiento.String(),
		Name:        b.Nombre,
		Description: b.Descripcion,
		BasePrice:   b.PrecioBase,
	}
}

// AppointmentFromBackend converts the backend's date + clock strings into
// instants in loc.
func AppointmentFromBackend(b *BackendAppointment, loc *time.Location) (*Appointment, error) {
	day, err := time.ParseInLocation(dateLayout, b.Fecha, loc)
	if err != nil {
		return nil, fmt.Errorf("appointment %s: invalid date %q", b.IDCita, b.Fecha)
	}

	a := &Appointment{
		ID:        b.IDCita.String(),
		Title:     b.Titulo,
		AllDay:    b.TodoElDia,
		PatientID: b.IDPaciente.String(),
		DoctorID:  b.IDPersonal.String(),
		ReasonID:  b.IDMotivo.String(),
		Notes:     b.Observaciones,
		Color:     b.Color,
	}

	if b.TodoElDia {
		a.Start = day
		a.End = day.AddDate(0, 0, 1)
	} else {
		if a.Start, err = atClock(day, b.HoraInicio, loc); err != nil {
			return nil, fmt.Errorf("appointment %s: %w", b.IDCita, err)
		}
		if a.End, err = atClock(day, b.HoraFin, loc); err != nil {
			return nil, fmt.Errorf("appointment %s: %w", b.IDCita, err)
		}
	}

	if b.Estado == "" {
		a.Status = StatusPending
	} else if a.Status, err = ParseStatus(b.Estado); err != nil {
		return nil, fmt.Errorf("appointment %s: %w", b.IDCita, err)
	}

	if b.Paciente != nil {
		ref := &PatientRef{ID: b.Paciente.IDPaciente.String()}
		if per := PersonaFromBackend(b.Paciente.Persona); per != nil {
			ref.FullName = per.FullName()
			ref.Phone = per.Phone
			ref.Email = per.Email
		}
		if ref.ID == "" {
			ref.ID = a.PatientID
		}
		a.Patient = ref
	}
	if b.Doctor != nil {
		d := DoctorFromBackend(*b.Doctor)
		a.Doctor = &d
	}
	if b.Motivo != nil {
		a.Reason = &Reason{ID: b.Motivo.IDMotivo.String(), Description: b.Motivo.Descripcion}
	}
	for _, p := range b.Procedimientos {
		proc := ProcedureFromBackend(p)
		a.Procedures = append(a.Procedures, proc)
		a.ProcedureIDs = append(a.ProcedureIDs, proc.ID)
	}

	return a, nil
}

// AppointmentToBackend renders the appointment in loc. Resolved references
// are not sent back; the backend only needs ids.
func AppointmentToBackend(a *Appointment, loc *time.Location) *BackendAppointment {
	start := a.Start.In(loc)
	end := a.End.In(loc)

	b := &BackendAppointment{
		IDCita:        ID(a.ID),
		Titulo:        a.Title,
		Fecha:         start.Format(dateLayout),
		HoraInicio:    start.Format(clockLayout),
		HoraFin:       end.Format(clockLayout),
		TodoElDia:     a.AllDay,
		IDPaciente:    ID(a.PatientID),
		IDPersonal:    ID(a.DoctorID),
		IDMotivo:      ID(a.ReasonID),
		Estado:        a.Status.BackendCode(),
		Observaciones: a.Notes,
		Color:         a.Color,
	}
	for _, id := range a.ProcedureIDs {
		b.Procedimientos = append(b.Procedimientos, BackendProcedure{IDProcedimiento: ID(id)})
	}
	return b
}

func AppointmentPatchToBackend(p AppointmentPatch) BackendAppointmentPatch {
	b := BackendAppointmentPatch{
		Fecha:            p.Date,
		HoraInicio:       p.StartTime,
		HoraFin:          p.EndTime,
		IDPersonal:       p.DoctorID,
		Observaciones:    p.Notes,
		EliminarOriginal: p.CancelOriginal,
	}
	if p.Status != nil {
		code := p.Status.BackendCode()
		b.Estado = &code
	}
	return b
}

func BudgetFromBackend(b *BackendBudget) *Budget {
	budget := &Budget{
		ID:        b.IDPresupuesto.String(),
		PatientID: b.IDPaciente.String(),
		CreatedAt: b.FechaCreacion,
	}
	if b.Paciente != nil {
		if per := PersonaFromBackend(b.Paciente.Persona); per != nil {
			budget.PatientName = per.FullName()
			budget.PatientSurname = per.Surname()
		}
	}
	for _, d := range b.Detalles {
		budget.Items = append(budget.Items, BudgetItem{
			ProcedureID: d.IDProcedimiento.String(),
			Procedure:   d.Procedimiento,
			UnitPrice:   d.PrecioUnitario,
			Quantity:    d.Cantidad,
			AmountPaid:  d.MontoPagado,
		})
	}
	return budget
}

func atClock(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	c, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", clock)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, loc), nil
}
