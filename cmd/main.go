// Команда применяет миграции и заполняет пустую базу демонстрационными данными.
package main

import (
	"context"

	"clinic_queue/internal/config"
	"clinic_queue/internal/logger"
	"clinic_queue/internal/models"
	"clinic_queue/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").WithError(err).Fatal("Ошибка загрузки конфигурации")
	}
	log := logger.New(cfg.LogLevel).WithComponent("seed")

	db, err := storage.ConnectDatabase(cfg.DB.DSN())
	if err != nil {
		log.WithError(err).Fatal("Ошибка подключения к базе")
	}
	if err := storage.Migrate(db); err != nil {
		log.WithError(err).Fatal("Ошибка при миграции")
	}
	log.Info("Миграции применены")

	ctx := context.Background()
	store := storage.NewGormStore(db)

	queues, err := store.ListQueues(ctx)
	if err != nil {
		log.WithError(err).Fatal("Ошибка чтения очередей")
	}
	if len(queues) > 0 {
		log.WithField("queues", len(queues)).Info("База уже заполнена, пропускаем")
		return
	}

	doctors := []models.Doctor{
		{Name: "Dr. Elena Sokolova", Specialty: "Therapist", IsAvailable: true},
		{Name: "Dr. Marat Iskhakov", Specialty: "Pediatrician", IsAvailable: true},
	}
	for i := range doctors {
		if err := store.CreateDoctor(ctx, &doctors[i]); err != nil {
			log.WithError(err).Fatal("Ошибка создания врача")
		}
		q := models.Queue{Name: "Кабинет " + doctors[i].Specialty, DoctorID: &doctors[i].ID}
		if err := store.CreateQueue(ctx, &q); err != nil {
			log.WithError(err).Fatal("Ошибка создания очереди")
		}
	}

	for _, name := range []string{"Anna Kuznetsova", "Timur Galiev", "Sofia Orlova", "Pyotr Belov"} {
		p := models.Patient{Name: name}
		if err := store.CreatePatient(ctx, &p); err != nil {
			log.WithError(err).Fatal("Ошибка создания пациента")
		}
	}
	log.WithField("doctors", len(doctors)).Info("Демонстрационные данные созданы")
}
