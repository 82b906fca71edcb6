package service_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"textgame-server/internal/ai"
	"textgame-server/internal/mocks"
	"textgame-server/internal/model"
	"textgame-server/internal/service"
)

var (
	longContent = strings.Repeat("Дождь стучал по крышам старого города, и никто не выходил на улицу в этот вечер. ", 10)
	longSummary = strings.Repeat("Герой добрался до города под проливным дождем и нашел ночлег. ", 3)
)

func fnNamed(name string) interface{} {
	return mock.MatchedBy(func(fn ai.Function) bool { return fn.Name == name })
}

func jsonResult(t *testing.T, v any) ai.Result {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return ai.Result{
		OK:               true,
		Raw:              string(raw),
		PromptTokens:     100,
		CompletionTokens: 50,
		LatencyMS:        10,
	}
}

func fourOptions() map[string]any {
	return map[string]any{
		"options": []map[string]any{
			{"order": 1, "name": "Остаться в городе", "description": "Переждать бурю в трактире"},
			{"order": 2, "name": "Идти в горы", "description": "Рискнуть и выйти затемно"},
			{"order": 3, "name": "Искать проводника", "description": "Расспросить местных о дороге"},
			{"order": 4, "name": "Вернуться домой", "description": "Отказаться от всей затеи"},
		},
	}
}

func fourScores() map[string]any {
	return map[string]any{
		"options": []map[string]any{
			{"order": 1, "positivity": "4", "impact": "2", "complexity": "1"},
			{"order": 2, "positivity": "2", "impact": "5", "complexity": "4"},
			{"order": 3, "positivity": "3", "impact": "3", "complexity": "3"},
			{"order": 4, "positivity": "3", "impact": "1", "complexity": "2"},
		},
	}
}

func newTestService(t *testing.T) (*service.StoryService, *mocks.MockAIClient, *mocks.MockWritingStyleRepository, *mocks.MockStoryRepository) {
	t.Helper()
	mockAI := mocks.NewMockAIClient(t)
	mockAI.On("ModelName").Return("openai:test-model").Maybe()
	mockStyles := mocks.NewMockWritingStyleRepository(t)
	mockStories := mocks.NewMockStoryRepository(t)
	svc := service.NewStoryService(mockAI, mockStyles, mockStories, service.GenerationConfig{}, zap.NewNop())
	return svc, mockAI, mockStyles, mockStories
}

func seedStory() (*model.Story, *model.StoryChapter) {
	root := &model.StoryChapter{
		ID:      uuid.New(),
		Title:   "Прибытие",
		Content: longContent,
		Options: []*model.StoryChapterOption{
			{Order: 1, Name: "Остаться в городе", Description: "Переждать бурю", Positivity: 4, Impact: 2, Complexity: 1},
			{Order: 2, Name: "Идти в горы", Description: "Рискнуть", Positivity: 2, Impact: 5, Complexity: 4},
			{Order: 3, Name: "Искать проводника", Description: "Расспросить местных", Positivity: 3, Impact: 3, Complexity: 3},
			{Order: 4, Name: "Вернуться домой", Description: "Отказаться", Positivity: 3, Impact: 1, Complexity: 2},
		},
	}
	story := &model.Story{
		ID:          uuid.New(),
		Title:       "Город дождя",
		StylePrompt: "дождь,тоска",
		ModelName:   "openai:test-model",
		IsPublic:    true,
		Chapters:    []*model.StoryChapter{root},
	}
	root.StoryID = story.ID
	story.BuildLinks()
	return story, root
}

func TestGenerateWritingStyle(t *testing.T) {
	ctx := context.Background()

	t.Run("успешное извлечение", func(t *testing.T) {
		svc, mockAI, mockStyles, _ := newTestService(t)
		mockAI.On("CallFunction", mock.Anything, mock.Anything, fnNamed("writing_style")).
			Return(jsonResult(t, map[string]any{
				"name":     "Мрачный реализм",
				"keywords": []string{"дождь", "тоска", "серый город"},
			})).Once()
		mockStyles.On("Create", mock.Anything, mock.AnythingOfType("*model.WritingStyle")).Return(nil).Once()

		source := "Дождь шел весь день, и город тонул в серой мгле."
		style, err := svc.GenerateWritingStyle(ctx, source)

		require.NoError(t, err)
		assert.Equal(t, "Мрачный реализм", style.Name)
		assert.Equal(t, "дождь,тоска,серый город", style.Keywords)
		require.NotNil(t, style.SourceText)
		assert.Equal(t, source, *style.SourceText)
		assert.Equal(t, 0, style.UseCount)
		mockStyles.AssertExpectations(t)
	})

	t.Run("пустой источник", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		_, err := svc.GenerateWritingStyle(ctx, "   ")
		assert.ErrorIs(t, err, service.ErrEmptySource)
	})
}

func TestGenerateStory(t *testing.T) {
	ctx := context.Background()
	styleID := uuid.New()
	style := &model.WritingStyle{ID: styleID, Name: "Мрачный реализм", Keywords: "дождь,тоска"}

	rootChapter := map[string]any{
		"story_title": "Город дождя",
		"title":       "Прибытие",
		"content":     longContent,
	}

	t.Run("полный конвейер", func(t *testing.T) {
		svc, mockAI, mockStyles, mockStories := newTestService(t)
		mockStyles.On("GetByID", mock.Anything, styleID).Return(style, nil).Once()
		mockAI.On("CallFunction", mock.Anything, mock.Anything, fnNamed("chapter")).
			Return(jsonResult(t, rootChapter)).Once()
		mockAI.On("CallFunction", mock.Anything, mock.Anything, fnNamed("options")).
			Return(jsonResult(t, fourOptions())).Once()
		mockAI.On("CallFunction", mock.Anything, mock.Anything, fnNamed("options_score")).
			Return(jsonResult(t, fourScores())).Once()
		mockStories.On("Create", mock.Anything, mock.AnythingOfType("*model.Story")).Return(nil).Once()
		mockStyles.On("IncrementUseCount", mock.Anything, styleID).Return(nil).Once()

		story, err := svc.GenerateStory(ctx, styleID)

		require.NoError(t, err)
		assert.Equal(t, "Город дождя", story.Title)
		assert.Equal(t, "дождь,тоска", story.StylePrompt)
		assert.Equal(t, "openai:test-model", story.ModelName)
		assert.True(t, story.IsPublic)
		require.Len(t, story.Chapters, 1)

		chapter := story.Chapters[0]
		assert.Equal(t, "Прибытие", chapter.Title)
		assert.True(t, chapter.IsRoot())
		require.Len(t, chapter.Options, 4)
		for _, option := range chapter.Options {
			assert.True(t, option.Scored(), "вариант %d должен быть оценен", option.Order)
		}
		// текст вариантов приходит со стадии вариантов, оценки со стадии оценок
		second, ok := chapter.FindOption(2)
		require.True(t, ok)
		assert.Equal(t, "Идти в горы", second.Name)
		assert.Equal(t, 2, second.Positivity)
		assert.Equal(t, 5, second.Impact)
		assert.Equal(t, 4, second.Complexity)

		// стоимость всех трех стадий оседает на главе
		assert.Equal(t, 300, chapter.PromptTokens)
		assert.Equal(t, 150, chapter.CompletionTokens)

		mockStyles.AssertExpectations(t)
		mockStories.AssertExpectations(t)
	})

	t.Run("отказ от ветвления дает вариант продолжить", func(t *testing.T) {
		svc, mockAI, mockStyles, mockStories := newTestService(t)
		mockStyles.On("GetByID", mock.Anything, styleID).Return(style, nil).Once()
		mockAI.On("CallFunction", mock.Anything, mock.Anything, fnNamed("chapter")).
			Return(jsonResult(t, rootChapter)).Once()
		mockAI.On("CallFunction", mock.Anything, mock.Anything, fnNamed("options")).
			Return(jsonResult(t, map[string]any{"options": []map[string]any{}})).Once()
		mockStories.On("Create", mock.Anything, mock.AnythingOfType("*model.Story")).Return(nil).Once()
		mockStyles.On("IncrementUseCount", mock.Anything, styleID).Return(nil).Once()

		story, err := svc.GenerateStory(ctx, styleID)

		require.NoError(t, err)
		chapter := story.Chapters[0]
		require.Len(t, chapter.Options, 1)
		option := chapter.Options[0]
		assert.Equal(t, model.ContinueOptionOrder, option.Order)
		assert.True(t, option.IsContinue)
		assert.False(t, option.Scored())
		// стадия оценок не вызывалась
		mockAI.AssertNotCalled(t, "CallFunction", mock.Anything, mock.Anything, fnNamed("options_score"))
	})

	t.Run("короткая глава повторяется, стоимость копится", func(t *testing.T) {
		svc, mockAI, mockStyles, mockStories := newTestService(t)
		mockStyles.On("GetByID", mock.Anything, styleID).Return(style, nil).Once()
		mockAI.On("CallFunction", mock.Anything, mock.Anything, fnNamed("chapter")).
			Return(jsonResult(t, map[string]any{
				"story_title": "Город дождя",
				"title":       "Прибытие",
				"content":     "Слишком коротко.",
			})).Once()
		mockAI.On("CallFunction", mock.Anything, mock.Anything, fnNamed("chapter")).
			Return(jsonResult(t, rootChapter)).Once()
		mockAI.On("CallFunction", mock.Anything, mock.Anything, fnNamed("options")).
			Return(jsonResult(t, fourOptions())).Once()
		mockAI.On("CallFunction", mock.Anything, mock.Anything, fnNamed("options_score")).
			Return(jsonResult(t, fourScores())).Once()
		mockStories.On("Create", mock.Anything, mock.AnythingOfType("*model.Story")).Return(nil).Once()
		mockStyles.On("IncrementUseCount", mock.Anything, styleID).Return(nil).Once()

		story, err := svc.GenerateStory(ctx, styleID)

		require.NoError(t, err)
		// две попытки черновика плюс варианты и оценки
		assert.Equal(t, 400, story.Chapters[0].PromptTokens)
	})

	t.Run("при исчерпании бюджета ничего не сохраняется", func(t *testing.T) {
		svc, mockAI, mockStyles, mockStories := newTestService(t)
		mockStyles.On("GetByID", mock.Anything, styleID).Return(style, nil).Once()
		mockAI.On("CallFunction", mock.Anything, mock.Anything, fnNamed("chapter")).
			Return(ai.Result{Err: &ai.SchemaError{Message: "нет вызова функции"}})

		_, err := svc.GenerateStory(ctx, styleID)

		var exhausted *ai.ExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, 6, exhausted.Attempts)
		mockStories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		mockStyles.AssertNotCalled(t, "IncrementUseCount", mock.Anything, mock.Anything)
	})
}

func TestGenerateNextChapter(t *testing.T) {
	ctx := context.Background()

	nextChapter := map[string]any{
		"title":            "Перевал",
		"content":          longContent,
		"previous_summary": longSummary,
	}

	t.Run("продолжение по выбранному варианту", func(t *testing.T) {
		svc, mockAI, _, mockStories := newTestService(t)
		story, root := seedStory()
		mockStories.On("GetByID", mock.Anything, story.ID).Return(story, nil).Once()
		mockAI.On("CallFunction", mock.Anything, mock.Anything, fnNamed("chapter")).
			Return(jsonResult(t, nextChapter)).Once()
		mockAI.On("CallFunction", mock.Anything, mock.Anything, fnNamed("options")).
			Return(jsonResult(t, fourOptions())).Once()
		mockAI.On("CallFunction", mock.Anything, mock.Anything, fnNamed("options_score")).
			Return(jsonResult(t, fourScores())).Once()
		mockStories.On("AppendChapter", mock.Anything, story, mock.AnythingOfType("*model.StoryChapter")).Return(nil).Once()

		chapter, err := svc.GenerateNextChapter(ctx, story.ID, root.ID, 2)

		require.NoError(t, err)
		assert.Equal(t, "Перевал", chapter.Title)
		require.NotNil(t, chapter.PreviousChapterID)
		assert.Equal(t, root.ID, *chapter.PreviousChapterID)
		assert.Equal(t, 2, chapter.PreviousOptionOrder)
		require.NotNil(t, chapter.PreviousSummary)
		assert.Equal(t, longSummary, *chapter.PreviousSummary)
		assert.Len(t, story.Chapters, 2)
		assert.Same(t, chapter, root.DefaultNextChapter())
		mockStories.AssertExpectations(t)
	})

	t.Run("закрытая история", func(t *testing.T) {
		svc, _, _, mockStories := newTestService(t)
		story, root := seedStory()
		story.Closed = true
		mockStories.On("GetByID", mock.Anything, story.ID).Return(story, nil).Once()

		_, err := svc.GenerateNextChapter(ctx, story.ID, root.ID, 1)
		assert.ErrorIs(t, err, model.ErrStoryClosed)
	})

	t.Run("неизвестная глава", func(t *testing.T) {
		svc, _, _, mockStories := newTestService(t)
		story, _ := seedStory()
		mockStories.On("GetByID", mock.Anything, story.ID).Return(story, nil).Once()

		_, err := svc.GenerateNextChapter(ctx, story.ID, uuid.New(), 1)
		assert.ErrorIs(t, err, model.ErrChapterNotFound)
	})

	t.Run("неизвестный вариант", func(t *testing.T) {
		svc, _, _, mockStories := newTestService(t)
		story, root := seedStory()
		mockStories.On("GetByID", mock.Anything, story.ID).Return(story, nil).Once()

		_, err := svc.GenerateNextChapter(ctx, story.ID, root.ID, 9)
		assert.ErrorIs(t, err, model.ErrOptionNotFound)
	})
}

func TestAutoWrite(t *testing.T) {
	ctx := context.Background()

	nextChapter := map[string]any{
		"title":            "Перевал",
		"content":          longContent,
		"previous_summary": longSummary,
	}

	t.Run("дописывает заданное число глав", func(t *testing.T) {
		svc, mockAI, _, mockStories := newTestService(t)
		story, _ := seedStory()
		mockStories.On("GetByID", mock.Anything, story.ID).Return(story, nil).Once()
		mockAI.On("CallFunction", mock.Anything, mock.Anything, fnNamed("chapter")).
			Return(jsonResult(t, nextChapter)).Twice()
		mockAI.On("CallFunction", mock.Anything, mock.Anything, fnNamed("options")).
			Return(jsonResult(t, fourOptions())).Twice()
		mockAI.On("CallFunction", mock.Anything, mock.Anything, fnNamed("options_score")).
			Return(jsonResult(t, fourScores())).Twice()
		mockStories.On("AppendChapter", mock.Anything, story, mock.AnythingOfType("*model.StoryChapter")).Return(nil).Twice()

		written, err := svc.AutoWrite(ctx, story.ID, model.PersonalityDarkness, 2)

		require.NoError(t, err)
		require.Len(t, written, 2)
		for _, chapter := range written {
			require.NotNil(t, chapter.PersonalityUsed)
			assert.Equal(t, model.PersonalityDarkness, *chapter.PersonalityUsed)
		}
		// каждая новая глава продолжает канонический путь
		assert.Len(t, story.Chapters, 3)
		path := story.DefaultPath()
		assert.Same(t, written[1], path[len(path)-1])
		mockStories.AssertExpectations(t)
	})

	t.Run("неизвестный профиль", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		_, err := svc.AutoWrite(ctx, uuid.New(), model.WriterPersonality("cheerful"), 1)
		assert.ErrorIs(t, err, model.ErrUnknownPersonality)
	})
}
