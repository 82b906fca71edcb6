package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"textgame-server/internal/ai"
	"textgame-server/internal/model"
	"textgame-server/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

// handleServiceError переводит ошибку сервиса в HTTP-статус и завершает запрос.
func handleServiceError(c *gin.Context, err error, logger *zap.Logger) {
	var exhausted *ai.ExhaustedError

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrChapterNotFound),
		errors.Is(err, model.ErrOptionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrStoryClosed):
		status = http.StatusConflict
	case errors.Is(err, model.ErrUnknownPersonality),
		errors.Is(err, service.ErrEmptySource),
		errors.Is(err, service.ErrSourceTooLong):
		status = http.StatusBadRequest
	case errors.As(err, &exhausted):
		// модель так и не дала пригодный ответ, вина на вышестоящем сервисе
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		logger.Error("внутренняя ошибка запроса", zap.Error(err))
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: message})
}
