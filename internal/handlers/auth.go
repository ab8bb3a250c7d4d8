package handlers

import (
	"net/http"
	"strings"

	"clinic_queue/internal/apperr"
	"clinic_queue/internal/auth"
	"clinic_queue/internal/logger"
	"clinic_queue/internal/models"
	"clinic_queue/internal/response"
	"clinic_queue/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Surname  string `json:"surname" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthHandler обслуживает учётные записи персонала регистратуры.
type AuthHandler struct {
	directory storage.Directory
	issuer    *auth.Issuer
	log       *logrus.Entry
}

func NewAuthHandler(directory storage.Directory, issuer *auth.Issuer, log *logger.Logger) *AuthHandler {
	return &AuthHandler{directory: directory, issuer: issuer, log: log.WithComponent("auth")}
}

// @Summary		Регистрация пользователя
// @Description	Регистрация нового сотрудника
// @Tags			auth
// @Accept			json
// @Produce		json
// @Param			user	body		RegisterRequest				true	"Данные пользователя"
// @Success		201		{object}	response.SuccessResponse	"Успешная регистрация"
// @Failure		400		{object}	response.ErrorResponse		"Ошибка валидации (VALIDATION_ERROR) или пользователь уже существует (EMAIL_EXISTS)"
// @Failure		500		{object}	response.ErrorResponse		"Ошибка сервера (PASSWORD_HASH_ERROR, DB_ERROR)"
// @Router			/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "PASSWORD_HASH_ERROR",
			Message: "Ошибка при хешировании пароля",
		})
		return
	}

	user := models.User{
		Name:         req.Name,
		Surname:      req.Surname,
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hashedPassword),
	}
	if err := h.directory.CreateUser(c.Request.Context(), &user); err != nil {
		if apperr.IsConflict(err) {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "EMAIL_EXISTS",
				Message: "Пользователь с таким email уже существует",
			})
			return
		}
		h.log.WithError(err).Error("create user")
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при создании пользователя",
		})
		return
	}

	c.JSON(http.StatusCreated, response.SuccessResponse{
		Message: "Пользователь успешно зарегистрирован",
	})
}

// @Summary		Авторизация пользователя
// @Description	Авторизация пользователя и получение токенов
// @Tags			auth
// @Accept			json
// @Produce		json
// @Param			user	body		LoginRequest			true	"Данные для авторизации"
// @Success		200		{object}	response.TokenResponse	"Успешная авторизация"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации данных (VALIDATION_ERROR)"
// @Failure		401		{object}	response.ErrorResponse	"Неверные учетные данные (INVALID_CREDENTIALS)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (TOKEN_GENERATION_ERROR)"
// @Router			/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.directory.GetUserByEmail(c.Request.Context(), strings.ToLower(req.Email))
	if err != nil {
		if !apperr.IsNotFound(err) {
			h.log.WithError(err).Error("load user")
		}
		invalidCredentials(c)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		invalidCredentials(c)
		return
	}

	h.issueTokens(c, user.ID)
}

// @Summary		Обновление токенов
// @Description	Выдаёт новую пару токенов по действующему refresh токену
// @Tags			auth
// @Accept			json
// @Produce		json
// @Param			token	body		RefreshRequest			true	"Refresh токен"
// @Success		200		{object}	response.TokenResponse	"Новая пара токенов"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации данных (VALIDATION_ERROR)"
// @Failure		401		{object}	response.ErrorResponse	"Неверный refresh токен (INVALID_REFRESH_TOKEN, USER_NOT_FOUND)"
// @Router			/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	userID, err := h.issuer.ParseRefresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{
			Code:    "INVALID_REFRESH_TOKEN",
			Message: "Неверный или просроченный refresh токен",
		})
		return
	}

	if _, err := h.directory.GetUser(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{
			Code:    "USER_NOT_FOUND",
			Message: "Пользователь не найден",
		})
		return
	}

	h.issueTokens(c, userID)
}

func (h *AuthHandler) issueTokens(c *gin.Context, userID uint) {
	access, refresh, err := h.issuer.Pair(userID)
	if err != nil {
		h.log.WithError(err).Error("sign tokens")
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "TOKEN_GENERATION_ERROR",
			Message: "Ошибка при генерации токенов",
		})
		return
	}
	c.JSON(http.StatusOK, response.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

func invalidCredentials(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, response.ErrorResponse{
		Code:    "INVALID_CREDENTIALS",
		Message: "Неверный email или пароль",
	})
}
