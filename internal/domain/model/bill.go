package model

import "time"

type BillStatus string

const (
	BillStatusPending  BillStatus = "pending"
	BillStatusAccepted BillStatus = "accepted"
	BillStatusRefused  BillStatus = "refused"
)

func (s BillStatus) Valid() bool {
	switch s {
	case BillStatusPending, BillStatusAccepted, BillStatusRefused:
		return true
	}
	return false
}

// ExpenseTypes are the choices offered by the new bill form.
var ExpenseTypes = []string{
	"Transports",
	"Restaurants et bars",
	"Hôtel et logement",
	"Services en ligne",
	"IT et électronique",
	"Equipement et matériel",
	"Fournitures de bureau",
}

// BillDateLayout is the canonical layout of Bill.Date.
const BillDateLayout = "2006-01-02"

type Bill struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Type         string     `json:"type"`
	Name         string     `json:"name"`
	Date         string     `json:"date"`
	Amount       int        `json:"amount"`
	VAT          int        `json:"vat"`
	Pct          int        `json:"pct"`
	Commentary   string     `json:"commentary"`
	FileURL      string     `json:"fileUrl"`
	FileName     string     `json:"fileName"`
	Status       BillStatus `json:"status"`
	CommentAdmin string     `json:"commentAdmin,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Draft is set between the receipt upload and the first update.
	Draft bool `json:"-"`
}
