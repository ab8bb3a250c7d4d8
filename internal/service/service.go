// Package service runs the clinic queue use cases: admitting patients, calling the next one in,
// and closing consultations. Writes for one queue are serialized; reads take no lock.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic_queue/internal/apperr"
	"clinic_queue/internal/estimation"
	"clinic_queue/internal/logger"
	"clinic_queue/internal/metrics"
	"clinic_queue/internal/models"
	"clinic_queue/internal/queue"
	"clinic_queue/internal/storage"
	"clinic_queue/internal/ws"

	"github.com/sirupsen/logrus"
)

const maxNotesLength = 1000

// Publisher receives one event per committed mutation. Delivery is best-effort.
type Publisher interface {
	Publish(ev ws.Event)
}

type QueueService struct {
	store     storage.Store
	engine    *estimation.Engine
	publisher Publisher
	metrics   *metrics.Metrics
	locks     *queueLocks
	now       func() time.Time
	log       *logrus.Entry
}

type Option func(*QueueService)

func WithClock(now func() time.Time) Option {
	return func(s *QueueService) { s.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *QueueService) { s.metrics = m }
}

func NewQueueService(store storage.Store, engine *estimation.Engine, publisher Publisher, log *logger.Logger, opts ...Option) *QueueService {
	s := &QueueService{
		store:     store,
		engine:    engine,
		publisher: publisher,
		locks:     newQueueLocks(),
		now:       time.Now,
		log:       log.WithComponent("queue_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type AddPatientInput struct {
	PatientID       uint   `json:"patientId" example:"12"`
	PriorityLevel   string `json:"priorityLevel" example:"normal"`
	AppointmentType string `json:"appointmentType" example:"new"`
	Notes           string `json:"notes" example:"fever since morning"`
}

func (in AddPatientInput) validate() error {
	if in.PatientID == 0 {
		return apperr.Invalid("patientId", "is required")
	}
	if len(in.Notes) > maxNotesLength {
		return apperr.Invalid("notes", fmt.Sprintf("must be at most %d characters", maxNotesLength))
	}
	return nil
}

// EntryView is a queue entry with its 1-based place among waiting entries. Position is 0 for
// entries that are no longer waiting.
type EntryView struct {
	models.QueueEntry
	Position int `json:"position"`
}

// QueueSnapshot is the full state an observer re-fetches after any queue event.
type QueueSnapshot struct {
	Queue           *models.Queue      `json:"queue"`
	DoctorAvailable bool               `json:"doctorAvailable"`
	InProgress      *models.QueueEntry `json:"inProgress"`
	Waiting         []EntryView        `json:"waiting"`
}

// AddPatient admits a patient into the queue as waiting and returns the entry with its position and
// wait estimate.
func (s *QueueService) AddPatient(ctx context.Context, queueID uint, in AddPatientInput) (view *EntryView, err error) {
	defer func() { s.metrics.ObserveOperation("add_patient", err) }()

	if queueID == 0 {
		return nil, apperr.Invalid("queueId", "is required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(queueID)
	defer unlock()

	q, err := s.store.GetQueue(ctx, queueID)
	if err != nil {
		return nil, err
	}
	if q.DoctorID == nil {
		return nil, &apperr.NotFoundError{Resource: "doctor", Message: fmt.Sprintf("queue %d has no doctor", queueID)}
	}
	if _, err := s.store.GetDoctor(ctx, *q.DoctorID); err != nil {
		return nil, err
	}

	entry, err := s.store.CreateEntry(ctx, storage.NewEntry{
		QueueID:         queueID,
		PatientID:       in.PatientID,
		PriorityLevel:   models.ParsePriority(in.PriorityLevel),
		AppointmentType: models.ParseAppointmentType(in.AppointmentType),
		Notes:           strings.TrimSpace(in.Notes),
	})
	if err != nil {
		return nil, err
	}

	view = &EntryView{QueueEntry: *entry}
	waiting := s.afterMutation(ctx, q)
	for i := range waiting {
		if waiting[i].ID == entry.ID {
			view.QueueEntry = waiting[i]
			view.Position = i + 1
			break
		}
	}

	ev := ws.QueueUpdated(queueID, ws.ActionPatientAdded)
	ev.PatientID = entry.PatientID
	ev.QueueItemID = entry.ID
	s.publish(ev)

	s.log.WithFields(logrus.Fields{
		"queue_id": queueID,
		"entry_id": entry.ID,
		"priority": entry.PriorityLevel,
		"position": view.Position,
	}).Info("patient added to queue")
	return view, nil
}

// CallNext moves the head of the waiting list into consultation. It fails with a ConflictError
// carrying the running entry while a consultation is in progress, and with NotFound when nobody is
// waiting.
func (s *QueueService) CallNext(ctx context.Context, queueID uint) (entry *models.QueueEntry, err error) {
	defer func() { s.metrics.ObserveOperation("call_next", err) }()

	unlock := s.locks.lock(queueID)
	defer unlock()

	q, err := s.store.GetQueue(ctx, queueID)
	if err != nil {
		return nil, err
	}

	active, err := s.store.GetInProgress(ctx, queueID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, s.conflict(ctx, queueID, active)
	}

	waiting, err := s.store.ListByQueueAndStatus(ctx, queueID, models.StatusWaiting)
	if err != nil {
		return nil, err
	}
	head, ok := queue.HeadOf(waiting)
	if !ok {
		return nil, &apperr.NotFoundError{Resource: "queue entry", ID: queueID, Message: "queue empty"}
	}

	now := s.now()
	entry, err = s.store.Transition(ctx, head.ID, models.StatusInProgress, storage.Timestamps{StartTime: &now})
	if err != nil {
		var conflict *apperr.ConflictError
		if errors.As(err, &conflict) && conflict.Active != nil {
			return nil, s.conflict(ctx, queueID, conflict.Active)
		}
		return nil, err
	}

	if patient, err := s.store.GetPatient(ctx, entry.PatientID); err == nil {
		entry.Patient = patient
	} else {
		s.log.WithError(err).WithField("entry_id", entry.ID).Warn("patient lookup failed after call-next")
	}

	s.afterMutation(ctx, q)

	ev := ws.QueueUpdated(queueID, ws.ActionNextPatientCalled)
	ev.PatientID = entry.PatientID
	ev.QueueItemID = entry.ID
	s.publish(ev)

	s.log.WithFields(logrus.Fields{"queue_id": queueID, "entry_id": entry.ID}).Info("next patient called")
	return entry, nil
}

// CompleteConsultation closes a running consultation and stamps its end time.
func (s *QueueService) CompleteConsultation(ctx context.Context, entryID uint) (entry *models.QueueEntry, err error) {
	defer func() { s.metrics.ObserveOperation("complete", err) }()
	now := s.now()
	return s.finish(ctx, entryID, models.StatusCompleted, storage.Timestamps{EndTime: &now}, ws.ActionConsultationCompleted)
}

// CancelConsultation cancels a waiting entry or a running consultation. No end time is recorded.
func (s *QueueService) CancelConsultation(ctx context.Context, entryID uint) (entry *models.QueueEntry, err error) {
	defer func() { s.metrics.ObserveOperation("cancel", err) }()
	return s.finish(ctx, entryID, models.StatusCancelled, storage.Timestamps{}, ws.ActionConsultationCancelled)
}

func (s *QueueService) finish(ctx context.Context, entryID uint, to models.Status, ts storage.Timestamps, action string) (*models.QueueEntry, error) {
	current, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(current.QueueID)
	defer unlock()

	entry, err := s.store.Transition(ctx, entryID, to, ts)
	if err != nil {
		return nil, err
	}

	if q, err := s.store.GetQueue(ctx, entry.QueueID); err == nil {
		s.afterMutation(ctx, q)
	} else {
		s.log.WithError(err).WithField("queue_id", entry.QueueID).Warn("queue lookup failed after status change")
	}

	ev := ws.QueueUpdated(entry.QueueID, action)
	ev.PatientID = entry.PatientID
	ev.QueueItemID = entry.ID
	s.publish(ev)

	s.log.WithFields(logrus.Fields{
		"queue_id": entry.QueueID,
		"entry_id": entry.ID,
		"status":   entry.Status,
	}).Info("queue entry closed")
	return entry, nil
}

// SweepNoShows marks every entry still waiting since before as no-show and returns how many were
// marked. Each affected queue gets one no_show_marked event.
func (s *QueueService) SweepNoShows(ctx context.Context, before time.Time) (int, error) {
	stale, err := s.store.StaleWaiting(ctx, before)
	if err != nil {
		s.metrics.ObserveOperation("sweep_no_shows", err)
		return 0, fmt.Errorf("sweep no-shows: %w", err)
	}

	byQueue := make(map[uint][]uint)
	var order []uint
	for _, e := range stale {
		if _, seen := byQueue[e.QueueID]; !seen {
			order = append(order, e.QueueID)
		}
		byQueue[e.QueueID] = append(byQueue[e.QueueID], e.ID)
	}

	total := 0
	for _, queueID := range order {
		marked := s.sweepQueue(ctx, queueID, byQueue[queueID])
		total += marked
	}
	s.metrics.ObserveOperation("sweep_no_shows", nil)
	return total, nil
}

func (s *QueueService) sweepQueue(ctx context.Context, queueID uint, entryIDs []uint) int {
	unlock := s.locks.lock(queueID)
	defer unlock()

	marked := 0
	for _, id := range entryIDs {
		if _, err := s.store.Transition(ctx, id, models.StatusNoShow, storage.Timestamps{}); err != nil {
			// The entry may have been called or cancelled since it was listed.
			if !apperr.IsInvalidTransition(err) && !apperr.IsNotFound(err) {
				s.log.WithError(err).WithField("entry_id", id).Warn("no-show transition failed")
			}
			continue
		}
		marked++
	}
	if marked == 0 {
		return 0
	}

	if q, err := s.store.GetQueue(ctx, queueID); err == nil {
		s.afterMutation(ctx, q)
	}
	ev := ws.QueueUpdated(queueID, ws.ActionNoShowMarked)
	ev.Count = marked
	s.publish(ev)

	s.log.WithFields(logrus.Fields{"queue_id": queueID, "count": marked}).Info("stale entries marked as no-show")
	return marked
}

// DoctorStats reports today's figures for an existing doctor.
func (s *QueueService) DoctorStats(ctx context.Context, doctorID uint) (*estimation.Stats, error) {
	if _, err := s.store.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	stats := s.engine.DoctorStats(ctx, doctorID)
	return &stats, nil
}

// QueueStatus returns the queue, the running consultation and the waiting list in serving order.
func (s *QueueService) QueueStatus(ctx context.Context, queueID uint) (*QueueSnapshot, error) {
	q, err := s.store.GetQueue(ctx, queueID)
	if err != nil {
		return nil, err
	}
	active, err := s.store.GetInProgress(ctx, queueID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		s.attachPatient(ctx, active)
	}
	waiting, err := s.store.ListByQueueAndStatus(ctx, queueID, models.StatusWaiting)
	if err != nil {
		return nil, err
	}

	snapshot := &QueueSnapshot{
		Queue:      q,
		InProgress: active,
		Waiting:    make([]EntryView, len(waiting)),
	}
	if q.Doctor != nil {
		snapshot.DoctorAvailable = q.Doctor.IsAvailable
	}
	for i := range waiting {
		s.attachPatient(ctx, &waiting[i])
		snapshot.Waiting[i] = EntryView{QueueEntry: waiting[i], Position: i + 1}
	}
	return snapshot, nil
}

// EntryPosition reports where an entry stands. Entries that are not waiting have position 0.
func (s *QueueService) EntryPosition(ctx context.Context, entryID uint) (*EntryView, error) {
	entry, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	view := &EntryView{QueueEntry: *entry}
	if entry.Status != models.StatusWaiting {
		return view, nil
	}

	waiting, err := s.store.ListByQueueAndStatus(ctx, entry.QueueID, models.StatusWaiting)
	if err != nil {
		return nil, err
	}
	pos, err := queue.PositionOf(waiting, entryID)
	if err != nil {
		// Changed status between the two reads.
		return view, nil
	}
	view.Position = pos
	return view, nil
}

// afterMutation refreshes wait estimates and drops cached doctor stats. Failures are logged: the
// mutation itself is already committed.
func (s *QueueService) afterMutation(ctx context.Context, q *models.Queue) []models.QueueEntry {
	if q.DoctorID != nil {
		s.engine.Invalidate(ctx, *q.DoctorID)
	}
	waiting, err := s.engine.RecomputeWaitTimes(ctx, q.ID)
	if err != nil {
		s.log.WithError(err).WithField("queue_id", q.ID).Error("wait time recompute failed")
		return nil
	}
	s.metrics.SetWaiting(q.ID, len(waiting))
	return waiting
}

func (s *QueueService) conflict(ctx context.Context, queueID uint, active *models.QueueEntry) error {
	s.attachPatient(ctx, active)
	return &apperr.ConflictError{
		QueueID: queueID,
		Active:  active,
		Message: fmt.Sprintf("queue %d is already consulting someone", queueID),
	}
}

func (s *QueueService) attachPatient(ctx context.Context, e *models.QueueEntry) {
	if e.Patient != nil {
		return
	}
	if p, err := s.store.GetPatient(ctx, e.PatientID); err == nil {
		e.Patient = p
	}
}

func (s *QueueService) publish(ev ws.Event) {
	if s.publisher != nil {
		s.publisher.Publish(ev)
	}
}
