package models

import "time"

type PriorityLevel string

const (
	PriorityUrgent   PriorityLevel = "urgent"
	PriorityPriority PriorityLevel = "priority"
	PriorityNormal   PriorityLevel = "normal"
)

// ParsePriority maps raw input onto the closed set of priority levels. Anything unrecognized,
// including the empty string, is normal.
func ParsePriority(s string) PriorityLevel {
	switch PriorityLevel(s) {
	case PriorityUrgent:
		return PriorityUrgent
	case PriorityPriority:
		return PriorityPriority
	default:
		return PriorityNormal
	}
}

type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusNoShow     Status = "no-show"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusInProgress, StatusCompleted, StatusNoShow, StatusCancelled:
		return true
	}
	return false
}

type AppointmentType string

const (
	AppointmentNew      AppointmentType = "new"
	AppointmentFollowup AppointmentType = "followup"
	AppointmentUrgent   AppointmentType = "urgent"
)

// ParseAppointmentType defaults to "new". The type is informational only.
func ParseAppointmentType(s string) AppointmentType {
	switch AppointmentType(s) {
	case AppointmentFollowup:
		return AppointmentFollowup
	case AppointmentUrgent:
		return AppointmentUrgent
	default:
		return AppointmentNew
	}
}

// QueueEntry is one patient's visit to one queue. QueueID, PatientID and TimeAdded never change
// after creation; StartTime and EndTime are written once.
type QueueEntry struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	QueueID           uint            `gorm:"index;not null" json:"queueId"`
	PatientID         uint            `gorm:"index;not null" json:"patientId"`
	Patient           *Patient        `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	PriorityLevel     PriorityLevel   `gorm:"type:varchar(16);not null;default:'normal'" json:"priorityLevel"`
	Status            Status          `gorm:"type:varchar(16);index;not null;default:'waiting'" json:"status"`
	AppointmentType   AppointmentType `gorm:"type:varchar(16);not null;default:'new'" json:"appointmentType"`
	Notes             string          `json:"notes,omitempty"`
	EstimatedWaitTime int             `gorm:"not null;default:0" json:"estimatedWaitTime"`
	TimeAdded         time.Time       `gorm:"index;not null" json:"timeAdded"`
	StartTime         *time.Time      `json:"startTime,omitempty"`
	EndTime           *time.Time      `json:"endTime,omitempty"`
	CreatedAt         time.Time       `json:"-"`
	UpdatedAt         time.Time       `json:"-"`
}
