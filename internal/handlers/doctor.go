package handlers

import (
	"net/http"

	"clinic_queue/internal/models"

	"github.com/gin-gonic/gin"
)

type CreateDoctorRequest struct {
	Name      string `json:"name" binding:"required" example:"Dr. Amina Yusuf"`
	Specialty string `json:"specialty" example:"Pediatrics"`
	// По умолчанию врач доступен
	IsAvailable *bool `json:"isAvailable" example:"true"`
}

type AvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable" binding:"required" example:"false"`
}

// CreateDoctor регистрирует врача
// @Summary		Создание врача
// @Tags			doctors
// @Accept			json
// @Produce		json
// @Param			doctor	body		CreateDoctorRequest		true	"Данные врача"
// @Security		BearerAuth
// @Success		201		{object}	models.Doctor
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Router			/api/doctors [post]
func (h *Handler) CreateDoctor(c *gin.Context) {
	var req CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	// Колонка is_available имеет default:true, поэтому false выставляется отдельным обновлением.
	doctor := &models.Doctor{Name: req.Name, Specialty: req.Specialty, IsAvailable: true}
	if err := h.directory.CreateDoctor(ctx, doctor); err != nil {
		respondError(c, h.log, err)
		return
	}
	if req.IsAvailable != nil && !*req.IsAvailable {
		updated, err := h.directory.SetDoctorAvailability(ctx, doctor.ID, false)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		doctor = updated
	}
	c.JSON(http.StatusCreated, doctor)
}

// SetAvailability меняет доступность врача
// @Summary		Доступность врача
// @Description	Флаг используется интерфейсом, вызов следующего пациента он не блокирует
// @Tags			doctors
// @Accept			json
// @Produce		json
// @Param			id		path		int						true	"ID врача"
// @Param			input	body		AvailabilityRequest		true	"Новый статус"
// @Security		BearerAuth
// @Success		200		{object}	models.Doctor
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, INVALID_DOCTOR_ID)"
// @Failure		404		{object}	response.ErrorResponse	"Врач не найден (NOT_FOUND)"
// @Router			/api/doctors/{id}/availability [patch]
func (h *Handler) SetAvailability(c *gin.Context) {
	doctorID, ok := pathID(c, "id", "INVALID_DOCTOR_ID")
	if !ok {
		return
	}
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	doctor, err := h.directory.SetDoctorAvailability(c.Request.Context(), doctorID, *req.IsAvailable)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, doctor)
}

// DoctorStats возвращает статистику врача за сегодня
// @Summary		Статистика врача
// @Description	Принятые и все пациенты за текущие сутки, среднее ожидание за сутки и средняя длительность приёма за 7 дней (в минутах)
// @Tags			doctors
// @Produce		json
// @Param			id	path		int	true	"ID врача"
// @Success		200	{object}	estimation.Stats
// @Failure		404	{object}	response.ErrorResponse	"Врач не найден (NOT_FOUND)"
// @Router			/api/doctors/{id}/stats [get]
func (h *Handler) DoctorStats(c *gin.Context) {
	doctorID, ok := pathID(c, "id", "INVALID_DOCTOR_ID")
	if !ok {
		return
	}
	stats, err := h.svc.DoctorStats(c.Request.Context(), doctorID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
