package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTicketID(t *testing.T) {
	assert.Equal(t, "GRV-2024-00001", FormatTicketID(2024, 1))
	assert.Equal(t, "GRV-2024-00042", FormatTicketID(2024, 42))
	assert.Equal(t, "GRV-2024-99999", FormatTicketID(2024, 99999))
	assert.Equal(t, "GRV-2024-100000", FormatTicketID(2024, 100000))
}

func TestIsTicketID(t *testing.T) {
	cases := map[string]bool{
		"GRV-2024-00001":  true,
		"GRV-2024-100000": true,
		"GRV-24-00001":    false,
		"GRV-2024-001":    false,
		"grv-2024-00001":  false,
		"TKT-2024-00001":  false,
		"":                false,
	}
	for id, want := range cases {
		assert.Equal(t, want, IsTicketID(id), id)
	}
}

func TestStatusAndPriorityValid(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.Valid())
	}
	assert.False(t, GrievanceStatus("closed").Valid())
	assert.False(t, GrievanceStatus("").Valid())

	for _, p := range Priorities {
		assert.True(t, p.Valid())
	}
	assert.False(t, GrievancePriority("critical").Valid())
}

func TestLastTimelineEntry(t *testing.T) {
	g := &Grievance{}
	_, ok := g.LastTimelineEntry()
	assert.False(t, ok)

	g.Timeline = []TimelineEntry{
		{Seq: 1, Status: StatusPending},
		{Seq: 2, Status: StatusResolved, Comment: "Fixed"},
	}
	last, ok := g.LastTimelineEntry()
	assert.True(t, ok)
	assert.Equal(t, StatusResolved, last.Status)
	assert.Equal(t, "Fixed", last.Comment)
}
