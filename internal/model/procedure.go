package model

import (
	"strings"
	"time"
)

type Procedure struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	BasePrice   Money  `json:"base_price"`
}

// BudgetItem is one priced line of a treatment plan (presupuesto)
type BudgetItem struct {
	ProcedureID string `json:"procedure_id"`
	Procedure   string `json:"procedure"`
	UnitPrice   Money  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	AmountPaid  Money  `json:"amount_paid"`
}

func (i BudgetItem) Subtotal() Money {
	return i.UnitPrice.Mul(i.Quantity)
}

type Budget struct {
	ID             string       `json:"id"`
	PatientID      string       `json:"patient_id"`
	PatientName    string       `json:"patient_name"`
	PatientSurname string       `json:"patient_surname"`
	Items          []BudgetItem `json:"items"`
	CreatedAt      time.Time    `json:"created_at"`
}

// BudgetTotals is derived from the items on every call and never stored
type BudgetTotals struct {
	Total Money `json:"total"`
	Paid  Money `json:"paid"`
	Owed  Money `json:"owed"`
}

func (b *Budget) Totals() BudgetTotals {
	var t BudgetTotals
	for _, it := range b.Items {
		t.Total += it.Subtotal()
		t.Paid += it.AmountPaid
	}
	t.Owed = t.Total - t.Paid
	return t
}

// IDSuffix is the short id used in exported file names
func (b *Budget) IDSuffix() string {
	id := strings.ReplaceAll(b.ID, "-", "")
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
