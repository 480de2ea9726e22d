package domain

import (
	"fmt"
	"regexp"
)

// TicketPrefix starts every grievance ticket id.
const TicketPrefix = "GRV"

var ticketIDPattern = regexp.MustCompile(`^GRV-\d{4}-\d{5,}$`)

// FormatTicketID renders the human-readable ticket id for a yearly sequence value.
func FormatTicketID(year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%05d", TicketPrefix, year, seq)
}

// IsTicketID reports whether id has the GRV-<year>-<sequence> shape.
func IsTicketID(id string) bool {
	return ticketIDPattern.MatchString(id)
}
