package tasks

import (
	"context"
	"fmt"
	"time"

	"clinic_queue/internal/logger"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// NoShowSweeper помечает как no-show записи, ожидающие дольше порога.
type NoShowSweeper interface {
	SweepNoShows(ctx context.Context, before time.Time) (int, error)
}

const sweepTimeout = time.Minute

// SweepStaleEntries переводит в no-show все записи, поставленные в очередь до начала текущих суток.
func SweepStaleEntries(ctx context.Context, sweeper NoShowSweeper, now time.Time, log *logrus.Entry) {
	y, m, d := now.Date()
	before := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	n, err := sweeper.SweepNoShows(ctx, before)
	if err != nil {
		log.WithError(err).Error("no-show sweep failed")
		return
	}
	log.WithField("count", n).WithField("before", before.Format(time.RFC3339)).Info("no-show sweep finished")
}

// InitScheduler инициализирует планировщик cron-задач.
func InitScheduler(sweeper NoShowSweeper, spec string, log *logger.Logger) (*cron.Cron, error) {
	entry := log.WithComponent("scheduler")
	c := cron.New(cron.WithSeconds())

	// Очистка вчерашних ожидающих, по умолчанию каждый день в 03:00.
	_, err := c.AddFunc(spec, func() {
		SweepStaleEntries(context.Background(), sweeper, time.Now(), entry)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule no-show sweep %q: %w", spec, err)
	}

	c.Start()
	entry.WithField("spec", spec).Info("cron scheduler started")
	return c, nil
}
