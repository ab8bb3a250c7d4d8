package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"clinic_queue/internal/apperr"
	"clinic_queue/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type storeFactory func(t *testing.T, clock *fakeClock) Store

type fixture struct {
	store    Store
	clock    *fakeClock
	doctor   *models.Doctor
	queue    *models.Queue
	patients []*models.Patient
}

func newFixture(t *testing.T, factory storeFactory) *fixture {
	t.Helper()
	ctx := context.Background()
	clock := newFakeClock()
	s := factory(t, clock)

	doctor := &models.Doctor{Name: "Dr. Okafor", IsAvailable: true}
	require.NoError(t, s.CreateDoctor(ctx, doctor))
	q := &models.Queue{Name: "Room 1", DoctorID: &doctor.ID}
	require.NoError(t, s.CreateQueue(ctx, q))

	f := &fixture{store: s, clock: clock, doctor: doctor, queue: q}
	for _, name := range []string{"Ana", "Ben", "Chen", "Dara"} {
		p := &models.Patient{Name: name}
		require.NoError(t, s.CreatePatient(ctx, p))
		f.patients = append(f.patients, p)
	}
	return f
}

func (f *fixture) add(t *testing.T, patient int, p models.PriorityLevel) *models.QueueEntry {
	t.Helper()
	e, err := f.store.CreateEntry(context.Background(), NewEntry{
		QueueID:       f.queue.ID,
		PatientID:     f.patients[patient].ID,
		PriorityLevel: p,
	})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	return e
}

func runStoreContract(t *testing.T, factory storeFactory) {
	t.Run("CreateEntryDefaults", func(t *testing.T) {
		f := newFixture(t, factory)
		ctx := context.Background()

		e, err := f.store.CreateEntry(ctx, NewEntry{QueueID: f.queue.ID, PatientID: f.patients[0].ID, PriorityLevel: "vip"})
		require.NoError(t, err)
		assert.Equal(t, models.StatusWaiting, e.Status)
		assert.Equal(t, models.PriorityNormal, e.PriorityLevel)
		assert.Equal(t, models.AppointmentNew, e.AppointmentType)
		assert.True(t, e.TimeAdded.Equal(f.clock.Now()))
		assert.Nil(t, e.StartTime)
		assert.Nil(t, e.EndTime)

		_, err = f.store.CreateEntry(ctx, NewEntry{QueueID: 999999, PatientID: f.patients[0].ID})
		assert.True(t, apperr.IsNotFound(err))
		_, err = f.store.CreateEntry(ctx, NewEntry{QueueID: f.queue.ID, PatientID: 999999})
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("ListsComeBackInServingOrder", func(t *testing.T) {
		f := newFixture(t, factory)
		ctx := context.Background()

		first := f.add(t, 0, models.PriorityNormal)
		urgent := f.add(t, 1, models.PriorityUrgent)
		second := f.add(t, 2, models.PriorityNormal)

		waiting, err := f.store.ListByQueueAndStatus(ctx, f.queue.ID, models.StatusWaiting)
		require.NoError(t, err)
		assert.Equal(t, []uint{urgent.ID, first.ID, second.ID}, entryIDs(waiting))

		all, err := f.store.ListByQueue(ctx, f.queue.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{urgent.ID, first.ID, second.ID}, entryIDs(all))
	})

	t.Run("TimestampsAreWrittenOnce", func(t *testing.T) {
		f := newFixture(t, factory)
		ctx := context.Background()
		e := f.add(t, 0, models.PriorityNormal)

		t0 := f.clock.Now()
		started, err := f.store.Transition(ctx, e.ID, models.StatusInProgress, Timestamps{StartTime: &t0})
		require.NoError(t, err)
		require.NotNil(t, started.StartTime)
		assert.True(t, started.StartTime.Equal(t0))

		t1 := t0.Add(20 * time.Minute)
		other := t1.Add(time.Hour)
		done, err := f.store.Transition(ctx, e.ID, models.StatusCompleted, Timestamps{StartTime: &other, EndTime: &t1})
		require.NoError(t, err)

		got, err := f.store.GetEntry(ctx, done.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, got.Status)
		require.NotNil(t, got.EndTime)
		assert.True(t, got.EndTime.Equal(t1))
		assert.True(t, got.StartTime.Equal(t0), "start time must not be overwritten")

		_, err = f.store.Transition(ctx, e.ID, models.StatusCancelled, Timestamps{})
		assert.True(t, apperr.IsInvalidTransition(err))
	})

	t.Run("OmittedTimestampDefaultsToNow", func(t *testing.T) {
		f := newFixture(t, factory)
		ctx := context.Background()
		e := f.add(t, 0, models.PriorityNormal)

		started, err := f.store.Transition(ctx, e.ID, models.StatusInProgress, Timestamps{})
		require.NoError(t, err)
		require.NotNil(t, started.StartTime)
		assert.True(t, started.StartTime.Equal(f.clock.Now()))
	})

	t.Run("CancelDoesNotSetEndTime", func(t *testing.T) {
		f := newFixture(t, factory)
		ctx := context.Background()
		waiting := f.add(t, 0, models.PriorityNormal)
		running := f.add(t, 1, models.PriorityNormal)

		_, err := f.store.Transition(ctx, running.ID, models.StatusInProgress, Timestamps{})
		require.NoError(t, err)

		for _, id := range []uint{waiting.ID, running.ID} {
			got, err := f.store.Transition(ctx, id, models.StatusCancelled, Timestamps{})
			require.NoError(t, err)
			assert.Equal(t, models.StatusCancelled, got.Status)
			assert.Nil(t, got.EndTime)
		}
	})

	t.Run("SecondInProgressIsRejected", func(t *testing.T) {
		f := newFixture(t, factory)
		ctx := context.Background()
		a := f.add(t, 0, models.PriorityNormal)
		b := f.add(t, 1, models.PriorityNormal)

		_, err := f.store.Transition(ctx, a.ID, models.StatusInProgress, Timestamps{})
		require.NoError(t, err)

		_, err = f.store.Transition(ctx, b.ID, models.StatusInProgress, Timestamps{})
		var conflict *apperr.ConflictError
		require.ErrorAs(t, err, &conflict)
		require.NotNil(t, conflict.Active)
		assert.Equal(t, a.ID, conflict.Active.ID)

		active, err := f.store.GetInProgress(ctx, f.queue.ID)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, a.ID, active.ID)

		gotB, err := f.store.GetEntry(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusWaiting, gotB.Status)
	})

	t.Run("ConcurrentStartsAdmitOne", func(t *testing.T) {
		f := newFixture(t, factory)
		ctx := context.Background()

		var entries []*models.QueueEntry
		for i := 0; i < 12; i++ {
			entries = append(entries, f.add(t, i%len(f.patients), models.PriorityNormal))
		}

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			conflicts int
		)
		for _, e := range entries {
			wg.Add(1)
			go func(id uint) {
				defer wg.Done()
				_, err := f.store.Transition(ctx, id, models.StatusInProgress, Timestamps{})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case apperr.IsConflict(err):
					conflicts++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(e.ID)
		}
		wg.Wait()

		assert.Equal(t, 1, successes)
		assert.Equal(t, len(entries)-1, conflicts)

		running, err := f.store.ListByQueueAndStatus(ctx, f.queue.ID, models.StatusInProgress)
		require.NoError(t, err)
		assert.Len(t, running, 1)
	})

	t.Run("SetEstimatedWaitTime", func(t *testing.T) {
		f := newFixture(t, factory)
		ctx := context.Background()
		e := f.add(t, 0, models.PriorityNormal)

		require.NoError(t, f.store.SetEstimatedWaitTime(ctx, e.ID, 45))
		got, err := f.store.GetEntry(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, 45, got.EstimatedWaitTime)

		assert.True(t, apperr.IsNotFound(f.store.SetEstimatedWaitTime(ctx, 999999, 1)))
	})

	t.Run("DoctorHistoryWindows", func(t *testing.T) {
		f := newFixture(t, factory)
		ctx := context.Background()

		done := f.add(t, 0, models.PriorityNormal)
		_, err := f.store.Transition(ctx, done.ID, models.StatusInProgress, Timestamps{})
		require.NoError(t, err)
		f.clock.Advance(10 * time.Minute)
		_, err = f.store.Transition(ctx, done.ID, models.StatusCompleted, Timestamps{})
		require.NoError(t, err)
		waiting := f.add(t, 1, models.PriorityNormal)

		now := f.clock.Now()
		completed, err := f.store.CompletedForDoctor(ctx, f.doctor.ID, now.Add(-time.Hour), now)
		require.NoError(t, err)
		assert.Equal(t, []uint{done.ID}, entryIDs(completed))

		completed, err = f.store.CompletedForDoctor(ctx, f.doctor.ID+1000, now.Add(-time.Hour), now)
		require.NoError(t, err)
		assert.Empty(t, completed)

		all, err := f.store.EntriesForDoctor(ctx, f.doctor.ID, now.Add(-time.Hour), now.Add(time.Hour))
		require.NoError(t, err)
		assert.ElementsMatch(t, []uint{done.ID, waiting.ID}, entryIDs(all))

		stale, err := f.store.StaleWaiting(ctx, now.Add(time.Second))
		require.NoError(t, err)
		assert.Equal(t, []uint{waiting.ID}, entryIDs(stale))
	})

	t.Run("DeleteQueueCascades", func(t *testing.T) {
		f := newFixture(t, factory)
		ctx := context.Background()
		e := f.add(t, 0, models.PriorityNormal)

		require.NoError(t, f.store.DeleteQueue(ctx, f.queue.ID))

		_, err := f.store.GetQueue(ctx, f.queue.ID)
		assert.True(t, apperr.IsNotFound(err))
		_, err = f.store.GetEntry(ctx, e.ID)
		assert.True(t, apperr.IsNotFound(err))
		assert.True(t, apperr.IsNotFound(f.store.DeleteQueue(ctx, f.queue.ID)))
	})

	t.Run("Directory", func(t *testing.T) {
		f := newFixture(t, factory)
		ctx := context.Background()

		q, err := f.store.GetQueue(ctx, f.queue.ID)
		require.NoError(t, err)
		require.NotNil(t, q.Doctor)
		assert.Equal(t, f.doctor.ID, q.Doctor.ID)

		d, err := f.store.SetDoctorAvailability(ctx, f.doctor.ID, false)
		require.NoError(t, err)
		assert.False(t, d.IsAvailable)

		missing := uint(999999)
		err = f.store.CreateQueue(ctx, &models.Queue{Name: "ghost", DoctorID: &missing})
		assert.True(t, apperr.IsNotFound(err))

		u := &models.User{Name: "Ivy", Surname: "Moss", Email: "ivy@clinic.test", PasswordHash: "x"}
		require.NoError(t, f.store.CreateUser(ctx, u))
		dup := &models.User{Name: "Ivy", Surname: "Moss", Email: "ivy@clinic.test", PasswordHash: "y"}
		assert.True(t, apperr.IsConflict(f.store.CreateUser(ctx, dup)))

		got, err := f.store.GetUserByEmail(ctx, "ivy@clinic.test")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})
}

func entryIDs(entries []models.QueueEntry) []uint {
	out := make([]uint, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
