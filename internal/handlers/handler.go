package handlers

import (
	"clinic_queue/internal/logger"
	"clinic_queue/internal/service"
	"clinic_queue/internal/storage"

	"github.com/sirupsen/logrus"
)

// Handler обслуживает HTTP API очередей поверх QueueService и справочника.
type Handler struct {
	svc       *service.QueueService
	directory storage.Directory
	log       *logrus.Entry
}

func NewHandler(svc *service.QueueService, directory storage.Directory, log *logger.Logger) *Handler {
	return &Handler{
		svc:       svc,
		directory: directory,
		log:       log.WithComponent("http"),
	}
}
