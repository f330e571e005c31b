package models

import (
	"time"

	"github.com/google/uuid"
)

// LifecycleStage is an attendee's current position in a webinar funnel.
type LifecycleStage string

const (
	StageRegistered   LifecycleStage = "REGISTERED"
	StageAttended     LifecycleStage = "ATTENDED"
	StageAddedToCart  LifecycleStage = "ADDED_TO_CART"
	StageBreakoutRoom LifecycleStage = "BREAKOUT_ROOM"
	StageFollowUp     LifecycleStage = "FOLLOW_UP"
	StageConverted    LifecycleStage = "CONVERTED"
)

// Valid reports whether s is a known lifecycle stage.
func (s LifecycleStage) Valid() bool {
	switch s {
	case StageRegistered, StageAttended, StageAddedToCart, StageBreakoutRoom, StageFollowUp, StageConverted:
		return true
	}
	return false
}

// CallStatus is an attendee's position in the sales call pipeline.
type CallStatus string

const (
	CallReadyForCall CallStatus = "READY_FOR_CALL"
	CallPending      CallStatus = "PENDING"
	CallInProgress   CallStatus = "IN_PROGRESS"
	CallCompleted    CallStatus = "COMPLETED"
)

// CallStatuses lists call statuses in pipeline order.
var CallStatuses = []CallStatus{CallReadyForCall, CallPending, CallInProgress, CallCompleted}

// AttendanceRecord is one attendee's latest relationship to one webinar.
// Only the current stage is stored; transitions are not retained.
type AttendanceRecord struct {
	WebinarID  uuid.UUID      `json:"webinar_id"`
	AttendeeID uuid.UUID      `json:"attendee_id"`
	Stage      LifecycleStage `json:"stage"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	JoinedAt   *time.Time     `json:"joined_at,omitempty"`
}

// TaggedAttendance is an attendance stage joined with its webinar's tags.
type TaggedAttendance struct {
	WebinarID uuid.UUID
	Stage     LifecycleStage
	Tags      []string
}

// StageCount is a grouped count of attendance rows for one webinar and stage.
type StageCount struct {
	WebinarID uuid.UUID
	Stage     LifecycleStage
	Count     int
}

// CallStatusCount is a grouped count of attendees by call status.
type CallStatusCount struct {
	Status CallStatus
	Count  int
}
