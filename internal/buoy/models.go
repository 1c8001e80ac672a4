package buoy

import (
	"time"

	"github.com/google/uuid"

	"github.com/lakeboard/lakeboard/internal/glofs"
)

// Status is the operational state of a monitoring buoy.
type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusOffline     Status = "offline"
	StatusRetired     Status = "retired"
)

// Valid reports whether the status is a known state.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusMaintenance, StatusOffline, StatusRetired:
		return true
	}
	return false
}

// allowedTransitions encodes the fleet state machine. Retired is terminal.
var allowedTransitions = map[Status][]Status{
	StatusActive:      {StatusMaintenance, StatusOffline, StatusRetired},
	StatusMaintenance: {StatusActive, StatusOffline, StatusRetired},
	StatusOffline:     {StatusActive, StatusMaintenance, StatusRetired},
	StatusRetired:     {},
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Buoy is one monitoring station in the fleet.
type Buoy struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Lake         glofs.Lake `json:"lake"`
	Lat          float64    `json:"lat"`
	Lon          float64    `json:"lon"`
	Status       Status     `json:"status"`
	DeployedAt   time.Time  `json:"deployedAt"`
	LastServiced *time.Time `json:"lastServiced,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
