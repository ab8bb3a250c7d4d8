package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"clinic_queue/internal/apperr"
	"clinic_queue/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// statusOf сопоставляет типизированные ошибки ядра с HTTP-кодами.
func statusOf(err error) int {
	switch apperr.CodeOf(err) {
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeConflict, apperr.CodeInvalidTransition:
		return http.StatusConflict
	case apperr.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, log *logrus.Entry, err error) {
	status := statusOf(err)

	var conflict *apperr.ConflictError
	if errors.As(err, &conflict) && conflict.Active != nil {
		c.JSON(status, response.ConflictResponse{
			Code:       apperr.CodeConflict,
			Message:    "Врач уже ведёт приём",
			InProgress: conflict.Active,
		})
		return
	}

	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(status, response.ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Внутренняя ошибка сервера",
		})
		return
	}

	c.JSON(status, response.ErrorResponse{
		Code:    apperr.CodeOf(err),
		Message: messageFor(status),
		Details: err.Error(),
	})
}

func messageFor(status int) string {
	switch status {
	case http.StatusNotFound:
		return "Объект не найден"
	case http.StatusConflict:
		return "Операция недопустима в текущем состоянии"
	default:
		return "Ошибка валидации данных"
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.ErrorResponse{
		Code:    apperr.CodeValidation,
		Message: "Ошибка валидации данных",
		Details: err.Error(),
	})
}

// pathID читает положительный числовой параметр пути. При ошибке ответ уже записан.
func pathID(c *gin.Context, name, code string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    code,
			Message: "Неверный идентификатор",
		})
		return 0, false
	}
	return uint(id), true
}
