// Package action implements the per-appointment quick actions of the calendar
// popover as a closed set of kinds.
package action

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/jwalitptl/dental-admin/internal/model"
)

type Kind string

const (
	KindConfirm     Kind = "confirm"
	KindPending     Kind = "pending"
	KindCancel      Kind = "cancel"
	KindAttend      Kind = "attend"
	KindReminder    Kind = "reminder"
	KindViewPatient Kind = "view_patient"
	KindReschedule  Kind = "reschedule"
	KindDelete      Kind = "delete"
)

type Group string

const (
	GroupStatus     Group = "status"
	GroupNavigation Group = "navigation"
)

type kindInfo struct {
	label  string
	icon   string
	group  Group
	target model.AppointmentStatus
}

// Kinds in menu order
var Kinds = []Kind{
	KindConfirm, KindPending, KindAttend, KindCancel,
	KindReminder, KindViewPatient, KindReschedule, KindDelete,
}

var kinds = map[Kind]kindInfo{
	KindConfirm:     {"Confirmar", "check-circle", GroupStatus, model.StatusConfirmed},
	KindPending:     {"Marcar como pendiente", "clock", GroupStatus, model.StatusPending},
	KindAttend:      {"Marcar como atendida", "user-check", GroupStatus, model.StatusAttended},
	KindCancel:      {"Cancelar cita", "x-circle", GroupStatus, model.StatusCancelled},
	KindReminder:    {"Enviar recordatorio", "message-circle", GroupNavigation, ""},
	KindViewPatient: {"Ver paciente", "user", GroupNavigation, ""},
	KindReschedule:  {"Reprogramar", "calendar-clock", GroupNavigation, ""},
	KindDelete:      {"Eliminar", "trash", GroupNavigation, ""},
}

func ParseKind(v string) (Kind, error) {
	if _, ok := kinds[Kind(v)]; ok {
		return Kind(v), nil
	}
	return "", fmt.Errorf("unknown action %q", v)
}

func (k Kind) Label() string { return kinds[k].label }

func (k Kind) Group() Group { return kinds[k].group }

// TargetStatus is the status a status action moves to; empty for others
func (k Kind) TargetStatus() model.AppointmentStatus { return kinds[k].target }

// AllowedTransitions is the explicit status transition table. Every status
// may move to every status, including itself.
var AllowedTransitions = func() map[model.AppointmentStatus]map[model.AppointmentStatus]bool {
	t := make(map[model.AppointmentStatus]map[model.AppointmentStatus]bool, len(model.Statuses))
	for _, from := range model.Statuses {
		t[from] = make(map[model.AppointmentStatus]bool, len(model.Statuses))
		for _, to := range model.Statuses {
			t[from][to] = true
		}
	}
	return t
}()

func CanTransition(from, to model.AppointmentStatus) bool {
	return AllowedTransitions[from][to]
}

type Item struct {
	Kind   Kind   `json:"kind"`
	Label  string `json:"label"`
	Icon   string `json:"icon"`
	Group  Group  `json:"group"`
	Active bool   `json:"active"`
}

// Menu lists the actions for a; the status item matching the current status
// is marked active.
func Menu(a *model.Appointment) []Item {
	items := make([]Item, 0, len(Kinds))
	for _, k := range Kinds {
		s := kinds[k]
		if s.group == GroupStatus && !CanTransition(a.Status, s.target) {
			continue
		}
		items = append(items, Item{
			Kind:   k,
			Label:  s.label,
			Icon:   s.icon,
			Group:  s.group,
			Active: s.group == GroupStatus && a.Status == s.target,
		})
	}
	return items
}

var nonDigits = regexp.MustCompile(`\D`)

// WhatsAppLink builds the wa.me reminder link. Local numbers get countryCode
// prefixed; numbers already carrying it are kept.
func WhatsAppLink(phone, countryCode, text string) (string, error) {
	digits := nonDigits.ReplaceAllString(phone, "")
	if len(digits) < 6 {
		return "", fmt.Errorf("invalid phone %q", phone)
	}
	if countryCode != "" && !strings.HasPrefix(digits, countryCode) {
		digits = countryCode + digits
	}
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(text), nil
}

// ReminderText is the message prefilled in the WhatsApp reminder
func ReminderText(a *model.Appointment, clinic string) string {
	name := "paciente"
	if a.Patient != nil && a.Patient.FullName != "" {
		name = a.Patient.FullName
	}
	return fmt.Sprintf("Hola %s, le recordamos su cita en %s el %s a las %s. ¡Lo esperamos!",
		name, clinic, a.Start.Format("02/01/2006"), a.Start.Format("15:04"))
}
