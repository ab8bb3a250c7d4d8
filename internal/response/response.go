package response

import "clinic_queue/internal/models"

// SuccessResponse представляет успешный ответ API
type SuccessResponse struct {
	Message string `json:"message" example:"Операция успешно выполнена"`
}

// ErrorResponse представляет ответ с ошибкой API
type ErrorResponse struct {
	// Код ошибки для программной обработки
	// example: VALIDATION_ERROR
	Code string `json:"code"`

	// Человекочитаемое сообщение об ошибке
	// example: Ошибка валидации данных
	Message string `json:"message"`

	// Дополнительные детали об ошибке (опционально)
	// example: patientId: is required
	Details string `json:"details,omitempty"`
}

// ConflictResponse возвращается, когда врач уже ведёт приём. InProgress содержит текущую запись
// вместе с пациентом, чтобы интерфейс мог показать, кто сейчас на приёме.
type ConflictResponse struct {
	// example: CONFLICT
	Code string `json:"code"`
	// example: Врач уже ведёт приём
	Message    string             `json:"message"`
	InProgress *models.QueueEntry `json:"inProgress,omitempty"`
}

// TokenResponse представляет ответ с токенами авторизации
type TokenResponse struct {
	// JWT токен для доступа к защищенным эндпоинтам
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"access_token"`

	// JWT токен для обновления access токена
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	RefreshToken string `json:"refresh_token"`
}
