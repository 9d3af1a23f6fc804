package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderFilterMatches(t *testing.T) {
	driver := "driver-1"
	order := &Order{
		ID:       "o-1",
		UserID:   "passenger-1",
		DriverID: &driver,
		Status:   StatusAccepted,
	}

	tests := []struct {
		name   string
		filter OrderFilter
		want   bool
	}{
		{"empty filter matches all", OrderFilter{}, true},
		{"user match", OrderFilter{UserID: "passenger-1"}, true},
		{"user mismatch", OrderFilter{UserID: "passenger-2"}, false},
		{"driver match", OrderFilter{DriverID: "driver-1"}, true},
		{"driver mismatch", OrderFilter{DriverID: "driver-2"}, false},
		{"status match", OrderFilter{Statuses: []string{StatusPending, StatusAccepted}}, true},
		{"status mismatch", OrderFilter{Statuses: []string{StatusPending}}, false},
		{"unassigned excludes assigned", OrderFilter{UnassignedOnly: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.filter.Matches(order))
		})
	}
}

func TestOrderFilterUnassigned(t *testing.T) {
	pending := &Order{ID: "o-2", UserID: "passenger-1", Status: StatusPending}
	filter := OrderFilter{Statuses: []string{StatusPending}, UnassignedOnly: true}
	require.True(t, filter.Matches(pending))
}
