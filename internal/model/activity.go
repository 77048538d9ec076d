package model

import "time"

// ActivityAction names what a user did in the admin UI
type ActivityAction string

const (
	ActivityLogin         ActivityAction = "login"
	ActivityLogout        ActivityAction = "logout"
	ActivitySave          ActivityAction = "appointment.save"
	ActivityStatusChange  ActivityAction = "appointment.status"
	ActivityReschedule    ActivityAction = "appointment.reschedule"
	ActivityDelete        ActivityAction = "appointment.delete"
	ActivityTagAdded      ActivityAction = "patient.tag_added"
	ActivityTagRemoved    ActivityAction = "patient.tag_removed"
	ActivityNotesUpdated  ActivityAction = "patient.notes"
	ActivityHistoryUpdate ActivityAction = "patient.medical_history"
	ActivityStaffCreated  ActivityAction = "staff.create"
	ActivityBudgetExport  ActivityAction = "budget.export"
)

type ActivityEntry struct {
	ID         string         `json:"id" db:"id"`
	UserID     string         `json:"user_id" db:"user_id"`
	Username   string         `json:"username" db:"username"`
	Action     ActivityAction `json:"action" db:"action"`
	EntityType string         `json:"entity_type" db:"entity_type"`
	EntityID   string         `json:"entity_id" db:"entity_id"`
	Details    string         `json:"details,omitempty" db:"details"`
	RequestID  string         `json:"request_id,omitempty" db:"request_id"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}
