package model

type StaffRole string

const (
	RoleDoctor       StaffRole = "doctor"
	RoleAssistant    StaffRole = "assistant"
	RoleReceptionist StaffRole = "receptionist"
	RoleAdmin        StaffRole = "admin"
)

type Staff struct {
	ID        string    `json:"id"`
	PersonaID string    `json:"persona_id"`
	Persona   *Persona  `json:"persona,omitempty"`
	Role      StaffRole `json:"role"`
	Specialty string    `json:"specialty,omitempty"`
	Active    bool      `json:"active"`
}

func (s *Staff) FullName() string {
	if s.Persona == nil {
		return ""
	}
	return s.Persona.FullName()
}

// CreateStaffRequest registers a staff member together with its persona
type CreateStaffRequest struct {
	Persona   Persona   `json:"persona" validate:"required"`
	Role      StaffRole `json:"role" validate:"required,oneof=doctor assistant receptionist admin"`
	Specialty string    `json:"specialty" validate:"max=100"`
}

// Doctor is a selector entry from the appointment combos endpoint
type Doctor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Combos is the selector data for appointment forms
type Combos struct {
	Doctors []Doctor `json:"doctors"`
	Reasons []Reason `json:"reasons"`
}

func (c *Combos) HasDoctor(id string) bool {
	for _, d := range c.Doctors {
		if d.ID == id {
			return true
		}
	}
	return false
}
