package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"clinic_queue/internal/apperr"
	"clinic_queue/internal/estimation"
	"clinic_queue/internal/logger"
	"clinic_queue/internal/models"
	"clinic_queue/internal/storage"
	"clinic_queue/internal/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recorder struct {
	mu     sync.Mutex
	events []ws.Event
}

func (r *recorder) Publish(ev ws.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) all() []ws.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ws.Event(nil), r.events...)
}

func (r *recorder) actions() []string {
	var out []string
	for _, ev := range r.all() {
		out = append(out, ev.Action)
	}
	return out
}

type env struct {
	clock    *clock
	store    *storage.MemoryStore
	events   *recorder
	svc      *QueueService
	doctor   *models.Doctor
	queue    *models.Queue
	patients []*models.Patient
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	c := &clock{now: time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)}
	store := storage.NewMemoryStore(storage.WithClock(c.Now))
	engine := estimation.NewEngine(store, logger.Discard(), estimation.WithClock(c.Now))
	events := &recorder{}

	doctor := &models.Doctor{Name: "Dr. Mensah", Specialty: "GP", IsAvailable: true}
	require.NoError(t, store.CreateDoctor(ctx, doctor))
	q := &models.Queue{Name: "Room 2", DoctorID: &doctor.ID}
	require.NoError(t, store.CreateQueue(ctx, q))

	e := &env{
		clock:  c,
		store:  store,
		events: events,
		svc:    NewQueueService(store, engine, events, logger.Discard(), WithClock(c.Now)),
		doctor: doctor,
		queue:  q,
	}
	for _, name := range []string{"Amara", "Bilal", "Chioma", "Dmitri"} {
		p := &models.Patient{Name: name}
		require.NoError(t, store.CreatePatient(ctx, p))
		e.patients = append(e.patients, p)
	}
	return e
}

func (e *env) add(t *testing.T, patient int, priority string) *EntryView {
	t.Helper()
	view, err := e.svc.AddPatient(context.Background(), e.queue.ID, AddPatientInput{
		PatientID:     e.patients[patient].ID,
		PriorityLevel: priority,
	})
	require.NoError(t, err)
	e.clock.Advance(time.Minute)
	return view
}

func TestAddPatientOrdersByPriorityThenArrival(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first := e.add(t, 0, "normal")
	urgent := e.add(t, 1, "urgent")
	second := e.add(t, 2, "normal")

	assert.Equal(t, 1, first.Position)
	assert.Equal(t, 1, urgent.Position)
	assert.Equal(t, 3, second.Position)
	assert.Equal(t, 30, second.EstimatedWaitTime)

	snap, err := e.svc.QueueStatus(ctx, e.queue.ID)
	require.NoError(t, err)
	require.Len(t, snap.Waiting, 3)
	assert.Equal(t, []uint{urgent.ID, first.ID, second.ID}, viewIDs(snap.Waiting))
	for i, v := range snap.Waiting {
		assert.Equal(t, i+1, v.Position)
		assert.Equal(t, i*estimation.DefaultConsultationMinutes, v.EstimatedWaitTime)
	}
	assert.Nil(t, snap.InProgress)
	assert.True(t, snap.DoctorAvailable)

	pos, err := e.svc.EntryPosition(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, pos.Position)
	assert.Equal(t, 15, pos.EstimatedWaitTime)

	assert.Equal(t, []string{ws.ActionPatientAdded, ws.ActionPatientAdded, ws.ActionPatientAdded}, e.events.actions())
	for _, ev := range e.events.all() {
		assert.Equal(t, ws.TypeQueueUpdated, ev.Type)
		assert.Equal(t, e.queue.ID, ev.QueueID)
	}
}

func TestAddPatientNormalizesUnknownPriority(t *testing.T) {
	e := newEnv(t)
	view := e.add(t, 0, "vip")
	assert.Equal(t, models.PriorityNormal, view.PriorityLevel)
	assert.Equal(t, models.AppointmentNew, view.AppointmentType)
}

func TestAddPatientRejectsBadInput(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.AddPatient(ctx, e.queue.ID, AddPatientInput{})
	assert.True(t, apperr.IsValidation(err))

	_, err = e.svc.AddPatient(ctx, 0, AddPatientInput{PatientID: e.patients[0].ID})
	assert.True(t, apperr.IsValidation(err))

	_, err = e.svc.AddPatient(ctx, 999, AddPatientInput{PatientID: e.patients[0].ID})
	assert.True(t, apperr.IsNotFound(err))

	_, err = e.svc.AddPatient(ctx, e.queue.ID, AddPatientInput{PatientID: 999})
	assert.True(t, apperr.IsNotFound(err))

	orphan := &models.Queue{Name: "No doctor"}
	require.NoError(t, e.store.CreateQueue(ctx, orphan))
	_, err = e.svc.AddPatient(ctx, orphan.ID, AddPatientInput{PatientID: e.patients[0].ID})
	assert.True(t, apperr.IsNotFound(err))

	entries, err := e.store.ListByQueue(ctx, e.queue.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, e.events.all())
}

func TestCallNextOnEmptyQueue(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.CallNext(ctx, e.queue.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
	assert.Empty(t, e.events.all())

	_, err = e.svc.CallNext(ctx, 999)
	assert.True(t, apperr.IsNotFound(err))
}

func TestCallNextShiftsEstimates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	head := e.add(t, 0, "priority")
	next := e.add(t, 1, "normal")
	last := e.add(t, 2, "normal")

	called, err := e.svc.CallNext(ctx, e.queue.ID)
	require.NoError(t, err)
	assert.Equal(t, head.ID, called.ID)
	assert.Equal(t, models.StatusInProgress, called.Status)
	require.NotNil(t, called.StartTime)
	assert.True(t, called.StartTime.Equal(e.clock.Now()))
	require.NotNil(t, called.Patient)
	assert.Equal(t, "Amara", called.Patient.Name)

	got, err := e.store.GetEntry(ctx, next.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.EstimatedWaitTime)
	got, err = e.store.GetEntry(ctx, last.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, got.EstimatedWaitTime)

	events := e.events.all()
	ev := events[len(events)-1]
	assert.Equal(t, ws.ActionNextPatientCalled, ev.Action)
	assert.Equal(t, e.patients[0].ID, ev.PatientID)
}

func TestCallNextWhileConsulting(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	first := e.add(t, 0, "normal")
	second := e.add(t, 1, "urgent")

	active, err := e.svc.CallNext(ctx, e.queue.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	published := len(e.events.all())

	_, err = e.svc.CallNext(ctx, e.queue.ID)
	var conflict *apperr.ConflictError
	require.True(t, errors.As(err, &conflict))
	require.NotNil(t, conflict.Active)
	assert.Equal(t, second.ID, conflict.Active.ID)
	require.NotNil(t, conflict.Active.Patient)
	assert.Equal(t, "Bilal", conflict.Active.Patient.Name)

	got, err := e.store.GetEntry(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, got.Status)
	got, err = e.store.GetEntry(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.Len(t, e.events.all(), published)
}

func TestConcurrentCallNextAdmitsOne(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		e.add(t, i, "normal")
	}

	const callers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.svc.CallNext(ctx, e.queue.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case apperr.IsConflict(err):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, conflicts)

	entries, err := e.store.ListByQueueAndStatus(ctx, e.queue.ID, models.StatusInProgress)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 0, e.svc.locks.size())
}

func TestCompleteConsultationFeedsAverage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.add(t, 0, "normal")
	waiting := e.add(t, 1, "normal")

	called, err := e.svc.CallNext(ctx, e.queue.ID)
	require.NoError(t, err)
	startedAt := *called.StartTime

	e.clock.Advance(20 * time.Minute)
	done, err := e.svc.CompleteConsultation(ctx, called.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	require.NotNil(t, done.EndTime)
	assert.True(t, done.EndTime.Equal(e.clock.Now()))
	assert.True(t, done.StartTime.Equal(startedAt))

	stats, err := e.svc.DoctorStats(ctx, e.doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, stats.AverageConsultTime)
	assert.Equal(t, 1, stats.PatientsSeen)
	assert.Equal(t, 2, stats.TotalPatients)

	third := e.add(t, 2, "normal")
	assert.Equal(t, 2, third.Position)
	assert.Equal(t, 20, third.EstimatedWaitTime)
	got, err := e.store.GetEntry(ctx, waiting.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.EstimatedWaitTime)

	events := e.events.all()
	var completed *ws.Event
	for i := range events {
		if events[i].Action == ws.ActionConsultationCompleted {
			completed = &events[i]
		}
	}
	require.NotNil(t, completed)
	assert.Equal(t, called.ID, completed.QueueItemID)
}

func TestCompleteRequiresRunningConsultation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	waiting := e.add(t, 0, "normal")

	_, err := e.svc.CompleteConsultation(ctx, waiting.ID)
	assert.True(t, apperr.IsInvalidTransition(err))

	_, err = e.svc.CompleteConsultation(ctx, 4242)
	assert.True(t, apperr.IsNotFound(err))
}

func TestCancelConsultation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	running := e.add(t, 0, "urgent")
	waiting := e.add(t, 1, "normal")
	behind := e.add(t, 2, "normal")

	_, err := e.svc.CallNext(ctx, e.queue.ID)
	require.NoError(t, err)

	cancelled, err := e.svc.CancelConsultation(ctx, running.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.StartTime)
	assert.Nil(t, cancelled.EndTime)

	cancelled, err = e.svc.CancelConsultation(ctx, waiting.ID)
	require.NoError(t, err)
	assert.Nil(t, cancelled.StartTime)
	assert.Nil(t, cancelled.EndTime)

	got, err := e.store.GetEntry(ctx, behind.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.EstimatedWaitTime)

	_, err = e.svc.CancelConsultation(ctx, running.ID)
	assert.True(t, apperr.IsInvalidTransition(err))

	pos, err := e.svc.EntryPosition(ctx, running.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, pos.Position)

	assert.Equal(t, ws.ActionConsultationCancelled, e.events.actions()[len(e.events.actions())-1])
}

func TestSweepNoShows(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	stale1 := e.add(t, 0, "normal")
	stale2 := e.add(t, 1, "urgent")
	stale3 := e.add(t, 2, "normal")
	_, err := e.svc.CallNext(ctx, e.queue.ID)
	require.NoError(t, err)

	e.clock.Advance(24 * time.Hour)
	fresh := e.add(t, 3, "normal")

	before := e.clock.Now().Add(-time.Hour)
	n, err := e.svc.SweepNoShows(ctx, before)
	require.NoError(t, err)
	// stale2 was called in; the other two were still waiting.
	assert.Equal(t, 2, n)

	for _, id := range []uint{stale1.ID, stale3.ID} {
		got, err := e.store.GetEntry(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusNoShow, got.Status)
	}
	got, err := e.store.GetEntry(ctx, stale2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
	got, err = e.store.GetEntry(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, got.Status)
	assert.Equal(t, 0, got.EstimatedWaitTime)

	events := e.events.all()
	last := events[len(events)-1]
	assert.Equal(t, ws.ActionNoShowMarked, last.Action)
	assert.Equal(t, 2, last.Count)

	n, err = e.svc.SweepNoShows(ctx, before)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDoctorStatsUnknownDoctor(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.DoctorStats(context.Background(), 31337)
	assert.True(t, apperr.IsNotFound(err))
}

func TestQueueStatusShowsRunningConsultation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.add(t, 0, "normal")
	e.add(t, 1, "normal")
	_, err := e.svc.CallNext(ctx, e.queue.ID)
	require.NoError(t, err)

	_, err = e.store.SetDoctorAvailability(ctx, e.doctor.ID, false)
	require.NoError(t, err)

	snap, err := e.svc.QueueStatus(ctx, e.queue.ID)
	require.NoError(t, err)
	require.NotNil(t, snap.InProgress)
	require.NotNil(t, snap.InProgress.Patient)
	assert.Equal(t, "Amara", snap.InProgress.Patient.Name)
	require.Len(t, snap.Waiting, 1)
	assert.Equal(t, "Bilal", snap.Waiting[0].Patient.Name)
	assert.False(t, snap.DoctorAvailable)

	_, err = e.svc.QueueStatus(ctx, 404)
	assert.True(t, apperr.IsNotFound(err))
}

func TestMutationsSucceedWithoutPublisher(t *testing.T) {
	e := newEnv(t)
	engine := estimation.NewEngine(e.store, logger.Discard(), estimation.WithClock(e.clock.Now))
	svc := NewQueueService(e.store, engine, nil, logger.Discard(), WithClock(e.clock.Now))

	_, err := svc.AddPatient(context.Background(), e.queue.ID, AddPatientInput{PatientID: e.patients[0].ID})
	require.NoError(t, err)
	_, err = svc.CallNext(context.Background(), e.queue.ID)
	require.NoError(t, err)
}

func viewIDs(views []EntryView) []uint {
	out := make([]uint, len(views))
	for i, v := range views {
		out[i] = v.ID
	}
	return out
}
