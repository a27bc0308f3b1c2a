package views

import (
	"fmt"
	"time"

	"billed/internal/domain/model"
)

var frenchMonths = [...]string{"Jan", "Fév", "Mar", "Avr", "Mai", "Jui", "Jui", "Aoû", "Sep", "Oct", "Nov", "Déc"}

// FormatDate turns "2004-04-04" into "4 Avr. 04".
func FormatDate(date string) (string, error) {
	t, err := time.Parse(model.BillDateLayout, date)
	if err != nil {
		return "", fmt.Errorf("formatting date %q: %w", date, err)
	}
	return fmt.Sprintf("%d %s. %02d", t.Day(), frenchMonths[t.Month()-1], t.Year()%100), nil
}

// FormatStatus returns the label shown for a bill status.
func FormatStatus(status model.BillStatus) string {
	switch status {
	case model.BillStatusPending:
		return "En attente"
	case model.BillStatusAccepted:
		return "Accepté"
	case model.BillStatusRefused:
		return "Refused"
	}
	return string(status)
}
