package handlers

import (
	"net/http"

	"clinic_queue/internal/service"

	"github.com/gin-gonic/gin"
)

// AddPatient ставит пациента в очередь
// @Summary		Добавление пациента в очередь
// @Description	Создаёт запись со статусом waiting, пересчитывает ожидание и уведомляет подписчиков очереди
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			id		path		int							true	"ID очереди"
// @Param			input	body		service.AddPatientInput		true	"Пациент и приоритет"
// @Security		BearerAuth
// @Success		201		{object}	service.EntryView			"Запись с позицией и оценкой ожидания"
// @Failure		400		{object}	response.ErrorResponse		"Ошибка валидации (VALIDATION_ERROR, INVALID_QUEUE_ID)"
// @Failure		404		{object}	response.ErrorResponse		"Очередь, врач или пациент не найдены (NOT_FOUND)"
// @Router			/api/queues/{id}/add-patient [post]
func (h *Handler) AddPatient(c *gin.Context) {
	queueID, ok := pathID(c, "id", "INVALID_QUEUE_ID")
	if !ok {
		return
	}
	var in service.AddPatientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	view, err := h.svc.AddPatient(c.Request.Context(), queueID, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// CallNext вызывает следующего пациента
// @Summary		Вызов следующего пациента
// @Description	Переводит первую ожидающую запись в статус in-progress. Если приём уже идёт, возвращает 409 с текущей записью
// @Tags			queue
// @Produce		json
// @Param			id	path		int	true	"ID очереди"
// @Security		BearerAuth
// @Success		200	{object}	models.QueueEntry			"Вызванная запись с пациентом"
// @Failure		404	{object}	response.ErrorResponse		"Очередь не найдена или пуста (NOT_FOUND)"
// @Failure		409	{object}	response.ConflictResponse	"Врач уже ведёт приём (CONFLICT)"
// @Router			/api/queues/{id}/call-next [post]
func (h *Handler) CallNext(c *gin.Context) {
	queueID, ok := pathID(c, "id", "INVALID_QUEUE_ID")
	if !ok {
		return
	}
	entry, err := h.svc.CallNext(c.Request.Context(), queueID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// CompleteConsultation завершает приём
// @Summary		Завершение приёма
// @Tags			queue
// @Produce		json
// @Param			id	path		int	true	"ID записи"
// @Security		BearerAuth
// @Success		200	{object}	models.QueueEntry
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (NOT_FOUND)"
// @Failure		409	{object}	response.ErrorResponse	"Недопустимый переход статуса (INVALID_TRANSITION)"
// @Router			/api/queue-items/{id}/complete [post]
func (h *Handler) CompleteConsultation(c *gin.Context) {
	entryID, ok := pathID(c, "id", "INVALID_QUEUE_ITEM_ID")
	if !ok {
		return
	}
	entry, err := h.svc.CompleteConsultation(c.Request.Context(), entryID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// CancelConsultation отменяет запись
// @Summary		Отмена записи или приёма
// @Tags			queue
// @Produce		json
// @Param			id	path		int	true	"ID записи"
// @Security		BearerAuth
// @Success		200	{object}	models.QueueEntry
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (NOT_FOUND)"
// @Failure		409	{object}	response.ErrorResponse	"Недопустимый переход статуса (INVALID_TRANSITION)"
// @Router			/api/queue-items/{id}/cancel [post]
func (h *Handler) CancelConsultation(c *gin.Context) {
	entryID, ok := pathID(c, "id", "INVALID_QUEUE_ITEM_ID")
	if !ok {
		return
	}
	entry, err := h.svc.CancelConsultation(c.Request.Context(), entryID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// EntryPosition возвращает позицию записи
// @Summary		Позиция в очереди
// @Description	Позиция считается с 1 среди ожидающих. Для записей не в статусе waiting позиция равна 0
// @Tags			queue
// @Produce		json
// @Param			id	path		int	true	"ID записи"
// @Success		200	{object}	service.EntryView
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (NOT_FOUND)"
// @Router			/api/queue-items/{id}/position [get]
func (h *Handler) EntryPosition(c *gin.Context) {
	entryID, ok := pathID(c, "id", "INVALID_QUEUE_ITEM_ID")
	if !ok {
		return
	}
	view, err := h.svc.EntryPosition(c.Request.Context(), entryID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// QueueStatus возвращает состояние очереди
// @Summary		Состояние очереди
// @Description	Текущий приём и список ожидающих в порядке обслуживания. Клиенты перечитывают его после каждого события queue_updated
// @Tags			queue
// @Produce		json
// @Param			id	path		int	true	"ID очереди"
// @Success		200	{object}	service.QueueSnapshot
// @Failure		404	{object}	response.ErrorResponse	"Очередь не найдена (NOT_FOUND)"
// @Router			/api/queues/{id} [get]
func (h *Handler) QueueStatus(c *gin.Context) {
	queueID, ok := pathID(c, "id", "INVALID_QUEUE_ID")
	if !ok {
		return
	}
	snap, err := h.svc.QueueStatus(c.Request.Context(), queueID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
