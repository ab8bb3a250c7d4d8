package storage

import (
	"context"
	"time"

	"clinic_queue/internal/models"
	"clinic_queue/internal/queue"
)

// EntryStore owns queue entry creation and every status change.
type EntryStore interface {
	CreateEntry(ctx context.Context, in NewEntry) (*models.QueueEntry, error)
	GetEntry(ctx context.Context, id uint) (*models.QueueEntry, error)
	// ListByQueue and ListByQueueAndStatus return entries in serving order.
	ListByQueue(ctx context.Context, queueID uint) ([]models.QueueEntry, error)
	ListByQueueAndStatus(ctx context.Context, queueID uint, status models.Status) ([]models.QueueEntry, error)
	// GetInProgress returns nil when no consultation is running.
	GetInProgress(ctx context.Context, queueID uint) (*models.QueueEntry, error)
	Transition(ctx context.Context, entryID uint, to models.Status, ts Timestamps) (*models.QueueEntry, error)
	SetEstimatedWaitTime(ctx context.Context, entryID uint, minutes int) error

	// CompletedForDoctor returns completed entries with both timestamps whose EndTime is in [from, to].
	CompletedForDoctor(ctx context.Context, doctorID uint, from, to time.Time) ([]models.QueueEntry, error)
	// EntriesForDoctor returns entries of any status whose TimeAdded is in [from, to).
	EntriesForDoctor(ctx context.Context, doctorID uint, from, to time.Time) ([]models.QueueEntry, error)
	StaleWaiting(ctx context.Context, before time.Time) ([]models.QueueEntry, error)
}

// Directory is the minimal view of doctors, patients, queues and staff accounts.
type Directory interface {
	CreateDoctor(ctx context.Context, d *models.Doctor) error
	GetDoctor(ctx context.Context, id uint) (*models.Doctor, error)
	SetDoctorAvailability(ctx context.Context, id uint, available bool) (*models.Doctor, error)
	CreatePatient(ctx context.Context, p *models.Patient) error
	GetPatient(ctx context.Context, id uint) (*models.Patient, error)
	CreateQueue(ctx context.Context, q *models.Queue) error
	// GetQueue loads the queue with its doctor, if any.
	GetQueue(ctx context.Context, id uint) (*models.Queue, error)
	ListQueues(ctx context.Context) ([]models.Queue, error)
	DeleteQueue(ctx context.Context, id uint) error
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

type Store interface {
	EntryStore
	Directory
}

type NewEntry struct {
	QueueID         uint
	PatientID       uint
	PriorityLevel   models.PriorityLevel
	AppointmentType models.AppointmentType
	Notes           string
}

// Timestamps carries optional values for StartTime and EndTime. A nil field means "now".
type Timestamps struct {
	StartTime *time.Time
	EndTime   *time.Time
}

type options struct {
	now func() time.Time
}

type Option func(*options)

// WithClock replaces time.Now for TimeAdded and default transition timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newEntry(in NewEntry, now time.Time) models.QueueEntry {
	return models.QueueEntry{
		QueueID:         in.QueueID,
		PatientID:       in.PatientID,
		PriorityLevel:   models.ParsePriority(string(in.PriorityLevel)),
		AppointmentType: models.ParseAppointmentType(string(in.AppointmentType)),
		Notes:           in.Notes,
		Status:          models.StatusWaiting,
		TimeAdded:       now,
	}
}

// applyTransition moves e to status to. StartTime and EndTime are only ever filled in, never
// replaced.
func applyTransition(e *models.QueueEntry, to models.Status, ts Timestamps, now time.Time) error {
	if err := queue.ValidateTransition(e.ID, e.Status, to); err != nil {
		return err
	}
	e.Status = to
	e.EstimatedWaitTime = 0

	switch to {
	case models.StatusInProgress:
		if e.StartTime == nil {
			e.StartTime = orNow(ts.StartTime, now)
		}
	case models.StatusCompleted:
		if e.EndTime == nil {
			e.EndTime = orNow(ts.EndTime, now)
		}
	}
	return nil
}

func orNow(t *time.Time, now time.Time) *time.Time {
	if t != nil {
		v := *t
		return &v
	}
	return &now
}
