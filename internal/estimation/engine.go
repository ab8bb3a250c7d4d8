// Package estimation derives average consultation times from history and keeps the wait
// estimates of waiting entries current. Figures here are advisory: lookup failures degrade to
// defaults instead of surfacing to callers.
package estimation

import (
	"context"
	"fmt"
	"math"
	"time"

	"clinic_queue/internal/logger"
	"clinic_queue/internal/models"
	"clinic_queue/internal/queue"

	"github.com/sirupsen/logrus"
)

const (
	DefaultConsultationMinutes = 15
	HistoryWindow              = 7 * 24 * time.Hour
)

// Source is the part of the store the engine reads and writes.
type Source interface {
	GetQueue(ctx context.Context, id uint) (*models.Queue, error)
	ListByQueueAndStatus(ctx context.Context, queueID uint, status models.Status) ([]models.QueueEntry, error)
	SetEstimatedWaitTime(ctx context.Context, entryID uint, minutes int) error
	CompletedForDoctor(ctx context.Context, doctorID uint, from, to time.Time) ([]models.QueueEntry, error)
	EntriesForDoctor(ctx context.Context, doctorID uint, from, to time.Time) ([]models.QueueEntry, error)
}

type Stats struct {
	PatientsSeen       int `json:"patientsSeen"`
	TotalPatients      int `json:"totalPatients"`
	AverageWaitTime    int `json:"averageWaitTime"`
	AverageConsultTime int `json:"averageConsultTime"`
}

type Engine struct {
	store Source
	cache StatsCache
	now   func() time.Time
	log   *logrus.Entry
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithCache(c StatsCache) Option {
	return func(e *Engine) {
		if c != nil {
			e.cache = c
		}
	}
}

func NewEngine(store Source, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		cache: noopCache{},
		now:   time.Now,
		log:   log.WithComponent("estimation"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AverageConsultationMinutes is the ceiling of the mean consultation length of the doctor's
// completed entries over the last seven days, or DefaultConsultationMinutes without history.
func (e *Engine) AverageConsultationMinutes(ctx context.Context, doctorID uint) int {
	now := e.now()
	entries, err := e.store.CompletedForDoctor(ctx, doctorID, now.Add(-HistoryWindow), now)
	if err != nil {
		e.log.WithError(err).WithField("doctor_id", doctorID).Warn("consultation history unavailable, using default")
		return DefaultConsultationMinutes
	}

	var total time.Duration
	n := 0
	for _, entry := range entries {
		if entry.StartTime == nil || entry.EndTime == nil || entry.EndTime.Before(*entry.StartTime) {
			continue
		}
		total += entry.EndTime.Sub(*entry.StartTime)
		n++
	}
	if n == 0 {
		return DefaultConsultationMinutes
	}
	return max(ceilMinutes(total, n), 1)
}

// RecomputeWaitTimes gives the waiting entry at 0-based position i an estimate of
// i * average consultation minutes and returns the waiting entries in serving order.
func (e *Engine) RecomputeWaitTimes(ctx context.Context, queueID uint) ([]models.QueueEntry, error) {
	q, err := e.store.GetQueue(ctx, queueID)
	if err != nil {
		return nil, err
	}
	avg := DefaultConsultationMinutes
	if q.DoctorID != nil {
		avg = e.AverageConsultationMinutes(ctx, *q.DoctorID)
	}

	waiting, err := e.store.ListByQueueAndStatus(ctx, queueID, models.StatusWaiting)
	if err != nil {
		return nil, fmt.Errorf("recompute queue %d: %w", queueID, err)
	}
	queue.Sort(waiting)

	for i := range waiting {
		estimate := i * avg
		if waiting[i].EstimatedWaitTime != estimate {
			if err := e.store.SetEstimatedWaitTime(ctx, waiting[i].ID, estimate); err != nil {
				return nil, fmt.Errorf("recompute queue %d: %w", queueID, err)
			}
			waiting[i].EstimatedWaitTime = estimate
		}
	}
	return waiting, nil
}

// DoctorStats summarizes the doctor's current calendar day. AverageConsultTime is the seven-day
// figure.
func (e *Engine) DoctorStats(ctx context.Context, doctorID uint) Stats {
	if cached, ok := e.cache.Get(ctx, doctorID); ok {
		return cached
	}

	stats := Stats{AverageConsultTime: e.AverageConsultationMinutes(ctx, doctorID)}

	start := startOfDay(e.now())
	entries, err := e.store.EntriesForDoctor(ctx, doctorID, start, start.AddDate(0, 0, 1))
	if err != nil {
		e.log.WithError(err).WithField("doctor_id", doctorID).Warn("daily entries unavailable, reporting zero counts")
		return stats
	}

	var waited time.Duration
	n := 0
	for _, entry := range entries {
		stats.TotalPatients++
		if entry.Status != models.StatusCompleted {
			continue
		}
		stats.PatientsSeen++
		if entry.StartTime != nil && !entry.StartTime.Before(entry.TimeAdded) {
			waited += entry.StartTime.Sub(entry.TimeAdded)
			n++
		}
	}
	if n > 0 {
		stats.AverageWaitTime = ceilMinutes(waited, n)
	}

	e.cache.Set(ctx, doctorID, stats)
	return stats
}

// Invalidate drops cached stats for the doctor after a queue change.
func (e *Engine) Invalidate(ctx context.Context, doctorID uint) {
	e.cache.Invalidate(ctx, doctorID)
}

func ceilMinutes(total time.Duration, n int) int {
	return int(math.Ceil(total.Minutes() / float64(n)))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
