package handler

import (
	"time"

	"github.com/google/uuid"

	"textgame-server/internal/model"
)

// DTO ответов API. Модели наружу не отдаются, чтобы формат ответа не
// зависел от внутреннего представления.

type styleResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Keywords  string    `json:"keywords"`
	UseCount  int       `json:"use_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toStyleResponse(style *model.WritingStyle) styleResponse {
	return styleResponse{
		ID:        style.ID,
		Name:      style.Name,
		Keywords:  style.Keywords,
		UseCount:  style.UseCount,
		CreatedAt: style.CreatedAt,
		UpdatedAt: style.UpdatedAt,
	}
}

type optionResponse struct {
	Order       int    `json:"order"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsContinue  bool   `json:"is_continue,omitempty"`
	Positivity  int    `json:"positivity,omitempty"`
	Impact      int    `json:"impact,omitempty"`
	Complexity  int    `json:"complexity,omitempty"`
}

type chapterResponse struct {
	ID                  uuid.UUID        `json:"id"`
	Title               string           `json:"title"`
	Content             string           `json:"content"`
	PreviousSummary     *string          `json:"previous_summary,omitempty"`
	PreviousChapterID   *uuid.UUID       `json:"previous_chapter_id,omitempty"`
	PreviousOptionOrder int              `json:"previous_option_order"`
	Options             []optionResponse `json:"options"`
	PromptTokens        int              `json:"prompt_tokens"`
	CompletionTokens    int              `json:"completion_tokens"`
	GenerationTimeMS    int64            `json:"generation_time_ms"`
	CreatedAt           time.Time        `json:"created_at"`
	PersonalityUsed     *string          `json:"personality_used,omitempty"`
}

func toChapterResponse(chapter *model.StoryChapter) chapterResponse {
	options := make([]optionResponse, 0, len(chapter.Options))
	for _, o := range chapter.Options {
		options = append(options, optionResponse{
			Order:       o.Order,
			Name:        o.Name,
			Description: o.Description,
			IsContinue:  o.IsContinue,
			Positivity:  o.Positivity,
			Impact:      o.Impact,
			Complexity:  o.Complexity,
		})
	}
	var personality *string
	if chapter.PersonalityUsed != nil {
		p := string(*chapter.PersonalityUsed)
		personality = &p
	}
	return chapterResponse{
		ID:                  chapter.ID,
		Title:               chapter.Title,
		Content:             chapter.Content,
		PreviousSummary:     chapter.PreviousSummary,
		PreviousChapterID:   chapter.PreviousChapterID,
		PreviousOptionOrder: chapter.PreviousOptionOrder,
		Options:             options,
		PromptTokens:        chapter.PromptTokens,
		CompletionTokens:    chapter.CompletionTokens,
		GenerationTimeMS:    chapter.GenerationTimeMS,
		CreatedAt:           chapter.CreatedAt,
		PersonalityUsed:     personality,
	}
}

type storyResponse struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	StylePrompt string            `json:"style_prompt"`
	ModelName   string            `json:"model_name"`
	IsPublic    bool              `json:"is_public"`
	Closed      bool              `json:"closed"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Chapters    []chapterResponse `json:"chapters,omitempty"`
	// DefaultPath - канонический порядок чтения, идентификаторы глав от корня
	DefaultPath []uuid.UUID `json:"default_path,omitempty"`
}

func toStoryResponse(story *model.Story, withChapters bool) storyResponse {
	resp := storyResponse{
		ID:          story.ID,
		Title:       story.Title,
		StylePrompt: story.StylePrompt,
		ModelName:   story.ModelName,
		IsPublic:    story.IsPublic,
		Closed:      story.Closed,
		CreatedAt:   story.CreatedAt,
		UpdatedAt:   story.UpdatedAt,
	}
	if withChapters {
		resp.Chapters = make([]chapterResponse, 0, len(story.Chapters))
		for _, chapter := range story.Chapters {
			if chapter.Deleted {
				continue
			}
			resp.Chapters = append(resp.Chapters, toChapterResponse(chapter))
		}
		for _, chapter := range story.DefaultPath() {
			resp.DefaultPath = append(resp.DefaultPath, chapter.ID)
		}
	}
	return resp
}
