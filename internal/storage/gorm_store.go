package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic_queue/internal/apperr"
	"clinic_queue/internal/models"
	"clinic_queue/internal/queue"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps queue state in Postgres.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB, opts ...Option) *GormStore {
	o := buildOptions(opts)
	return &GormStore{db: db, now: o.now}
}

func (s *GormStore) CreateEntry(ctx context.Context, in NewEntry) (*models.QueueEntry, error) {
	db := s.db.WithContext(ctx)
	if err := exists(db, &models.Queue{}, in.QueueID, "queue"); err != nil {
		return nil, err
	}
	if err := exists(db, &models.Patient{}, in.PatientID, "patient"); err != nil {
		return nil, err
	}

	e := newEntry(in, s.now())
	if err := db.Create(&e).Error; err != nil {
		return nil, fmt.Errorf("create queue entry: %w", err)
	}
	return &e, nil
}

func (s *GormStore) GetEntry(ctx context.Context, id uint) (*models.QueueEntry, error) {
	var e models.QueueEntry
	if err := s.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, notFoundOr(err, "queue entry", id)
	}
	return &e, nil
}

func (s *GormStore) ListByQueue(ctx context.Context, queueID uint) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	err := s.db.WithContext(ctx).
		Where("queue_id = ?", queueID).
		Order("time_added ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list queue %d: %w", queueID, err)
	}
	queue.Sort(entries)
	return entries, nil
}

func (s *GormStore) ListByQueueAndStatus(ctx context.Context, queueID uint, status models.Status) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	err := s.db.WithContext(ctx).
		Where("queue_id = ? AND status = ?", queueID, status).
		Order("time_added ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list queue %d (%s): %w", queueID, status, err)
	}
	queue.Sort(entries)
	return entries, nil
}

func (s *GormStore) GetInProgress(ctx context.Context, queueID uint) (*models.QueueEntry, error) {
	var e models.QueueEntry
	err := s.db.WithContext(ctx).
		Where("queue_id = ? AND status = ?", queueID, models.StatusInProgress).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get in-progress entry of queue %d: %w", queueID, err)
	}
	return &e, nil
}

// Transition locks the entry row, and for a move into in-progress also the queue row, so the
// check for a running consultation and the write happen atomically. The partial unique index
// rejects anything that slips past.
func (s *GormStore) Transition(ctx context.Context, entryID uint, to models.Status, ts Timestamps) (*models.QueueEntry, error) {
	var out models.QueueEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e models.QueueEntry
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&e, entryID).Error; err != nil {
			return notFoundOr(err, "queue entry", entryID)
		}

		if to == models.StatusInProgress && e.Status == models.StatusWaiting {
			var q models.Queue
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&q, e.QueueID).Error; err != nil {
				return notFoundOr(err, "queue", e.QueueID)
			}
			var active models.QueueEntry
			err := tx.Where("queue_id = ? AND status = ?", e.QueueID, models.StatusInProgress).First(&active).Error
			switch {
			case err == nil:
				return &apperr.ConflictError{QueueID: e.QueueID, Active: &active}
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}

		if err := applyTransition(&e, to, ts, s.now()); err != nil {
			return err
		}
		err := tx.Model(&e).
			Select("status", "start_time", "end_time", "estimated_wait_time").
			Updates(&e).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &apperr.ConflictError{QueueID: e.QueueID}
		}
		if err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GormStore) SetEstimatedWaitTime(ctx context.Context, entryID uint, minutes int) error {
	res := s.db.WithContext(ctx).
		Model(&models.QueueEntry{}).
		Where("id = ?", entryID).
		Update("estimated_wait_time", minutes)
	if res.Error != nil {
		return fmt.Errorf("set estimated wait time of entry %d: %w", entryID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("queue entry", entryID)
	}
	return nil
}

func (s *GormStore) CompletedForDoctor(ctx context.Context, doctorID uint, from, to time.Time) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	err := s.forDoctor(ctx, doctorID).
		Where("queue_entries.status = ?", models.StatusCompleted).
		Where("queue_entries.start_time IS NOT NULL AND queue_entries.end_time IS NOT NULL").
		Where("queue_entries.end_time >= ? AND queue_entries.end_time <= ?", from, to).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("completed entries of doctor %d: %w", doctorID, err)
	}
	return entries, nil
}

func (s *GormStore) EntriesForDoctor(ctx context.Context, doctorID uint, from, to time.Time) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	err := s.forDoctor(ctx, doctorID).
		Where("queue_entries.time_added >= ? AND queue_entries.time_added < ?", from, to).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("entries of doctor %d: %w", doctorID, err)
	}
	return entries, nil
}

func (s *GormStore) forDoctor(ctx context.Context, doctorID uint) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.QueueEntry{}).
		Select("queue_entries.*").
		Joins("JOIN queues ON queues.id = queue_entries.queue_id").
		Where("queues.doctor_id = ?", doctorID)
}

func (s *GormStore) StaleWaiting(ctx context.Context, before time.Time) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	err := s.db.WithContext(ctx).
		Where("status = ? AND time_added < ?", models.StatusWaiting, before).
		Order("queue_id ASC, time_added ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("stale waiting entries: %w", err)
	}
	return entries, nil
}

func (s *GormStore) CreateDoctor(ctx context.Context, d *models.Doctor) error {
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("create doctor: %w", err)
	}
	return nil
}

func (s *GormStore) GetDoctor(ctx context.Context, id uint) (*models.Doctor, error) {
	var d models.Doctor
	if err := s.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, notFoundOr(err, "doctor", id)
	}
	return &d, nil
}

func (s *GormStore) SetDoctorAvailability(ctx context.Context, id uint, available bool) (*models.Doctor, error) {
	res := s.db.WithContext(ctx).Model(&models.Doctor{}).Where("id = ?", id).Update("is_available", available)
	if res.Error != nil {
		return nil, fmt.Errorf("update doctor %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("doctor", id)
	}
	return s.GetDoctor(ctx, id)
}

func (s *GormStore) CreatePatient(ctx context.Context, p *models.Patient) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

func (s *GormStore) GetPatient(ctx context.Context, id uint) (*models.Patient, error) {
	var p models.Patient
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFoundOr(err, "patient", id)
	}
	return &p, nil
}

func (s *GormStore) CreateQueue(ctx context.Context, q *models.Queue) error {
	db := s.db.WithContext(ctx)
	if q.DoctorID != nil {
		if err := exists(db, &models.Doctor{}, *q.DoctorID, "doctor"); err != nil {
			return err
		}
	}
	if err := db.Omit("Doctor", "Entries").Create(q).Error; err != nil {
		return fmt.Errorf("create queue: %w", err)
	}
	return nil
}

func (s *GormStore) GetQueue(ctx context.Context, id uint) (*models.Queue, error) {
	var q models.Queue
	if err := s.db.WithContext(ctx).Preload("Doctor").First(&q, id).Error; err != nil {
		return nil, notFoundOr(err, "queue", id)
	}
	return &q, nil
}

func (s *GormStore) ListQueues(ctx context.Context) ([]models.Queue, error) {
	var queues []models.Queue
	if err := s.db.WithContext(ctx).Preload("Doctor").Order("id ASC").Find(&queues).Error; err != nil {
		return nil, fmt.Errorf("list queues: %w", err)
	}
	return queues, nil
}

// DeleteQueue removes the queue; the foreign key cascades to its entries.
func (s *GormStore) DeleteQueue(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Queue{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete queue %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("queue", id)
	}
	return nil
}

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	err := s.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &apperr.ConflictError{Message: "email already registered"}
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Resource: "user", Message: "user not found"}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	return &u, nil
}

func exists(db *gorm.DB, model interface{}, id uint, resource string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("look up %s %d: %w", resource, id, err)
	}
	if count == 0 {
		return apperr.NotFound(resource, id)
	}
	return nil
}

func notFoundOr(err error, resource string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource, id)
	}
	return fmt.Errorf("get %s %d: %w", resource, id, err)
}
