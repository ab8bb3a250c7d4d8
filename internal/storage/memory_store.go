package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"clinic_queue/internal/apperr"
	"clinic_queue/internal/models"
	"clinic_queue/internal/queue"
)

// MemoryStore keeps everything in process memory. A single lock covers every map, so the
// in-progress check inside Transition and the write that follows cannot interleave with another
// caller.
type MemoryStore struct {
	mu  sync.RWMutex
	now func() time.Time

	seq      uint
	doctors  map[uint]models.Doctor
	patients map[uint]models.Patient
	queues   map[uint]models.Queue
	entries  map[uint]models.QueueEntry
	users    map[uint]models.User
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{
		now:      o.now,
		doctors:  make(map[uint]models.Doctor),
		patients: make(map[uint]models.Patient),
		queues:   make(map[uint]models.Queue),
		entries:  make(map[uint]models.QueueEntry),
		users:    make(map[uint]models.User),
	}
}

// nextID must be called with mu held.
func (s *MemoryStore) nextID() uint {
	s.seq++
	return s.seq
}

func (s *MemoryStore) CreateEntry(_ context.Context, in NewEntry) (*models.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.queues[in.QueueID]; !ok {
		return nil, apperr.NotFound("queue", in.QueueID)
	}
	if _, ok := s.patients[in.PatientID]; !ok {
		return nil, apperr.NotFound("patient", in.PatientID)
	}

	now := s.now()
	e := newEntry(in, now)
	e.ID = s.nextID()
	e.CreatedAt, e.UpdatedAt = now, now
	s.entries[e.ID] = e
	return &e, nil
}

func (s *MemoryStore) GetEntry(_ context.Context, id uint) (*models.QueueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, apperr.NotFound("queue entry", id)
	}
	return &e, nil
}

func (s *MemoryStore) ListByQueue(_ context.Context, queueID uint) ([]models.QueueEntry, error) {
	return s.collect(func(e models.QueueEntry) bool { return e.QueueID == queueID }), nil
}

func (s *MemoryStore) ListByQueueAndStatus(_ context.Context, queueID uint, status models.Status) ([]models.QueueEntry, error) {
	return s.collect(func(e models.QueueEntry) bool {
		return e.QueueID == queueID && e.Status == status
	}), nil
}

func (s *MemoryStore) GetInProgress(_ context.Context, queueID uint) (*models.QueueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inProgress(queueID), nil
}

// inProgress must be called with mu held.
func (s *MemoryStore) inProgress(queueID uint) *models.QueueEntry {
	for _, e := range s.entries {
		if e.QueueID == queueID && e.Status == models.StatusInProgress {
			return &e
		}
	}
	return nil
}

func (s *MemoryStore) Transition(_ context.Context, entryID uint, to models.Status, ts Timestamps) (*models.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[entryID]
	if !ok {
		return nil, apperr.NotFound("queue entry", entryID)
	}
	if to == models.StatusInProgress && e.Status == models.StatusWaiting {
		if active := s.inProgress(e.QueueID); active != nil {
			return nil, &apperr.ConflictError{QueueID: e.QueueID, Active: active}
		}
	}

	now := s.now()
	if err := applyTransition(&e, to, ts, now); err != nil {
		return nil, err
	}
	e.UpdatedAt = now
	s.entries[entryID] = e
	return &e, nil
}

func (s *MemoryStore) SetEstimatedWaitTime(_ context.Context, entryID uint, minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[entryID]
	if !ok {
		return apperr.NotFound("queue entry", entryID)
	}
	e.EstimatedWaitTime = minutes
	s.entries[entryID] = e
	return nil
}

func (s *MemoryStore) CompletedForDoctor(_ context.Context, doctorID uint, from, to time.Time) ([]models.QueueEntry, error) {
	queues := s.queuesOf(doctorID)
	return s.collect(func(e models.QueueEntry) bool {
		return queues[e.QueueID] &&
			e.Status == models.StatusCompleted &&
			e.StartTime != nil && e.EndTime != nil &&
			!e.EndTime.Before(from) && !e.EndTime.After(to)
	}), nil
}

func (s *MemoryStore) EntriesForDoctor(_ context.Context, doctorID uint, from, to time.Time) ([]models.QueueEntry, error) {
	queues := s.queuesOf(doctorID)
	return s.collect(func(e models.QueueEntry) bool {
		return queues[e.QueueID] && !e.TimeAdded.Before(from) && e.TimeAdded.Before(to)
	}), nil
}

func (s *MemoryStore) StaleWaiting(_ context.Context, before time.Time) ([]models.QueueEntry, error) {
	entries := s.collect(func(e models.QueueEntry) bool {
		return e.Status == models.StatusWaiting && e.TimeAdded.Before(before)
	})
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].QueueID < entries[j].QueueID })
	return entries, nil
}

func (s *MemoryStore) queuesOf(doctorID uint) map[uint]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uint]bool)
	for id, q := range s.queues {
		if q.DoctorID != nil && *q.DoctorID == doctorID {
			out[id] = true
		}
	}
	return out
}

// collect returns matching entries in serving order, ties broken by id.
func (s *MemoryStore) collect(match func(models.QueueEntry) bool) []models.QueueEntry {
	s.mu.RLock()
	out := make([]models.QueueEntry, 0)
	for _, e := range s.entries {
		if match(e) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	queue.Sort(out)
	return out
}

func (s *MemoryStore) CreateDoctor(_ context.Context, d *models.Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.ID = s.nextID()
	d.CreatedAt = s.now()
	d.UpdatedAt = d.CreatedAt
	s.doctors[d.ID] = *d
	return nil
}

func (s *MemoryStore) GetDoctor(_ context.Context, id uint) (*models.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.doctors[id]
	if !ok {
		return nil, apperr.NotFound("doctor", id)
	}
	return &d, nil
}

func (s *MemoryStore) SetDoctorAvailability(_ context.Context, id uint, available bool) (*models.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.doctors[id]
	if !ok {
		return nil, apperr.NotFound("doctor", id)
	}
	d.IsAvailable = available
	d.UpdatedAt = s.now()
	s.doctors[id] = d
	return &d, nil
}

func (s *MemoryStore) CreatePatient(_ context.Context, p *models.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextID()
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	s.patients[p.ID] = *p
	return nil
}

func (s *MemoryStore) GetPatient(_ context.Context, id uint) (*models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.patients[id]
	if !ok {
		return nil, apperr.NotFound("patient", id)
	}
	return &p, nil
}

func (s *MemoryStore) CreateQueue(_ context.Context, q *models.Queue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.DoctorID != nil {
		if _, ok := s.doctors[*q.DoctorID]; !ok {
			return apperr.NotFound("doctor", *q.DoctorID)
		}
	}
	q.ID = s.nextID()
	q.CreatedAt = s.now()
	q.UpdatedAt = q.CreatedAt
	q.Doctor, q.Entries = nil, nil
	s.queues[q.ID] = *q
	return nil
}

func (s *MemoryStore) GetQueue(_ context.Context, id uint) (*models.Queue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.queues[id]
	if !ok {
		return nil, apperr.NotFound("queue", id)
	}
	s.attachDoctor(&q)
	return &q, nil
}

func (s *MemoryStore) ListQueues(_ context.Context) ([]models.Queue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Queue, 0, len(s.queues))
	for _, q := range s.queues {
		s.attachDoctor(&q)
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// attachDoctor must be called with mu held.
func (s *MemoryStore) attachDoctor(q *models.Queue) {
	if q.DoctorID == nil {
		return
	}
	if d, ok := s.doctors[*q.DoctorID]; ok {
		q.Doctor = &d
	}
}

func (s *MemoryStore) DeleteQueue(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.queues[id]; !ok {
		return apperr.NotFound("queue", id)
	}
	delete(s.queues, id)
	for entryID, e := range s.entries {
		if e.QueueID == id {
			delete(s.entries, entryID)
		}
	}
	return nil
}

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return &apperr.ConflictError{Message: "email already registered"}
		}
	}
	u.ID = s.nextID()
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, &apperr.NotFoundError{Resource: "user", Message: "user not found"}
}

func (s *MemoryStore) GetUser(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("user", id)
	}
	return &u, nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*GormStore)(nil)
)
