package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"textgame-server/internal/model"
	"textgame-server/internal/service"
)

// StoryHandler обслуживает HTTP API историй и стилей.
type StoryHandler struct {
	service *service.StoryService
	logger  *zap.Logger
}

// NewStoryHandler создает обработчик API.
func NewStoryHandler(svc *service.StoryService, logger *zap.Logger) *StoryHandler {
	return &StoryHandler{service: svc, logger: logger}
}

// RegisterRoutes регистрирует маршруты API.
func (h *StoryHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/styles", h.createStyle)
		api.GET("/styles", h.listStyles)
		api.GET("/styles/:id", h.getStyle)
		api.PUT("/styles/:id", h.updateStyle)
		api.DELETE("/styles/:id", h.deleteStyle)

		api.POST("/stories", h.createStory)
		api.GET("/stories", h.listStories)
		api.GET("/stories/:id", h.getStory)
		api.DELETE("/stories/:id", h.deleteStory)
		api.POST("/stories/:id/chapters", h.createChapter)
		api.POST("/stories/:id/autowrite", h.autoWrite)

		api.GET("/personalities", h.listPersonalities)
	}
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "некорректный идентификатор")
		return uuid.Nil, false
	}
	return id, true
}

// --- Стили ---

type createStyleRequest struct {
	SourceText string `json:"source_text" binding:"required"`
}

func (h *StoryHandler) createStyle(c *gin.Context) {
	var req createStyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ожидается поле source_text")
		return
	}

	style, err := h.service.GenerateWritingStyle(c.Request.Context(), req.SourceText)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusCreated, toStyleResponse(style))
}

func (h *StoryHandler) listStyles(c *gin.Context) {
	styles, err := h.service.Styles(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	resp := make([]styleResponse, 0, len(styles))
	for _, style := range styles {
		resp = append(resp, toStyleResponse(style))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StoryHandler) getStyle(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	style, err := h.service.Style(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, toStyleResponse(style))
}

type updateStyleRequest struct {
	Name     string `json:"name" binding:"required"`
	Keywords string `json:"keywords" binding:"required"`
}

func (h *StoryHandler) updateStyle(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req updateStyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ожидаются поля name и keywords")
		return
	}

	style, err := h.service.Style(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	style.Name = req.Name
	style.Keywords = req.Keywords
	if err := h.service.UpdateStyle(c.Request.Context(), style); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, toStyleResponse(style))
}

func (h *StoryHandler) deleteStyle(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.service.DeleteStyle(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Истории ---

type createStoryRequest struct {
	StyleID uuid.UUID `json:"style_id" binding:"required"`
}

func (h *StoryHandler) createStory(c *gin.Context) {
	var req createStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ожидается поле style_id")
		return
	}

	story, err := h.service.GenerateStory(c.Request.Context(), req.StyleID)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusCreated, toStoryResponse(story, true))
}

func (h *StoryHandler) listStories(c *gin.Context) {
	stories, err := h.service.Stories(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	resp := make([]storyResponse, 0, len(stories))
	for _, story := range stories {
		resp = append(resp, toStoryResponse(story, false))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StoryHandler) getStory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	story, err := h.service.Story(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, toStoryResponse(story, true))
}

func (h *StoryHandler) deleteStory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.service.DeleteStory(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Главы ---

type createChapterRequest struct {
	PreviousChapterID uuid.UUID `json:"previous_chapter_id" binding:"required"`
	OptionOrder       *int      `json:"option_order" binding:"required"`
}

func (h *StoryHandler) createChapter(c *gin.Context) {
	storyID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req createChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ожидаются поля previous_chapter_id и option_order")
		return
	}

	chapter, err := h.service.GenerateNextChapter(c.Request.Context(), storyID, req.PreviousChapterID, *req.OptionOrder)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusCreated, toChapterResponse(chapter))
}

// --- Автописьмо ---

type autoWriteRequest struct {
	Personality string `json:"personality" binding:"required"`
	Chapters    int    `json:"chapters"`
}

func (h *StoryHandler) autoWrite(c *gin.Context) {
	storyID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req autoWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ожидается поле personality")
		return
	}

	personality, err := model.ParsePersonality(req.Personality)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}

	chapters, err := h.service.AutoWrite(c.Request.Context(), storyID, personality, req.Chapters)
	if err != nil {
		// часть глав могла быть создана до сбоя, клиент должен их увидеть
		if len(chapters) > 0 {
			h.logger.Error("автописьмо прервано после частичного успеха",
				zap.String("storyID", storyID.String()),
				zap.Int("written", len(chapters)),
				zap.Error(err))
		}
		handleServiceError(c, err, h.logger)
		return
	}

	resp := make([]chapterResponse, 0, len(chapters))
	for _, chapter := range chapters {
		resp = append(resp, toChapterResponse(chapter))
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *StoryHandler) listPersonalities(c *gin.Context) {
	c.JSON(http.StatusOK, model.Personalities())
}
