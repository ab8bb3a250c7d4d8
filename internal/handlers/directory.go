package handlers

import (
	"net/http"

	"clinic_queue/internal/models"
	"clinic_queue/internal/response"

	"github.com/gin-gonic/gin"
)

type CreatePatientRequest struct {
	Name  string `json:"name" binding:"required" example:"Ivan Petrov"`
	Phone string `json:"phone" example:"+79990001122"`
	Email string `json:"email" binding:"omitempty,email" example:"ivan@example.com"`
}

type CreateQueueRequest struct {
	Name     string `json:"name" binding:"required" example:"Кабинет 12"`
	DoctorID *uint  `json:"doctorId" example:"1"`
}

// CreatePatient регистрирует пациента
// @Summary		Создание пациента
// @Tags			patients
// @Accept			json
// @Produce		json
// @Param			patient	body		CreatePatientRequest	true	"Данные пациента"
// @Security		BearerAuth
// @Success		201		{object}	models.Patient
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Router			/api/patients [post]
func (h *Handler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	patient := &models.Patient{Name: req.Name, Phone: req.Phone, Email: req.Email}
	if err := h.directory.CreatePatient(c.Request.Context(), patient); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, patient)
}

// CreateQueue создаёт очередь
// @Summary		Создание очереди
// @Description	Очередь без врача допустима, но добавить в неё пациента нельзя
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			queue	body		CreateQueueRequest		true	"Название и врач"
// @Security		BearerAuth
// @Success		201		{object}	models.Queue
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		404		{object}	response.ErrorResponse	"Врач не найден (NOT_FOUND)"
// @Router			/api/queues [post]
func (h *Handler) CreateQueue(c *gin.Context) {
	var req CreateQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ctx := c.Request.Context()
	q := &models.Queue{Name: req.Name, DoctorID: req.DoctorID}
	if err := h.directory.CreateQueue(ctx, q); err != nil {
		respondError(c, h.log, err)
		return
	}
	created, err := h.directory.GetQueue(ctx, q.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListQueues возвращает все очереди
// @Summary		Список очередей
// @Tags			queue
// @Produce		json
// @Success		200	{array}		models.Queue
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (INTERNAL_ERROR)"
// @Router			/api/queues [get]
func (h *Handler) ListQueues(c *gin.Context) {
	queues, err := h.directory.ListQueues(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, queues)
}

// DeleteQueue удаляет очередь вместе с записями
// @Summary		Удаление очереди
// @Tags			queue
// @Produce		json
// @Param			id	path		int	true	"ID очереди"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Failure		404	{object}	response.ErrorResponse	"Очередь не найдена (NOT_FOUND)"
// @Router			/api/queues/{id} [delete]
func (h *Handler) DeleteQueue(c *gin.Context) {
	queueID, ok := pathID(c, "id", "INVALID_QUEUE_ID")
	if !ok {
		return
	}
	if err := h.directory.DeleteQueue(c.Request.Context(), queueID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Очередь удалена"})
}
