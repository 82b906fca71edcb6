package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"

	"textgame-server/internal/ai"
	"textgame-server/internal/model"
	"textgame-server/internal/repository"
)

// Ошибки контракта вызова. Не повторяются, в отличие от сбоев генерации.
var (
	// ErrEmptySource - исходный текст для извлечения стиля пуст
	ErrEmptySource = errors.New("пустой исходный текст стиля")
	// ErrSourceTooLong - исходный текст превышает лимит токенов
	ErrSourceTooLong = errors.New("исходный текст стиля слишком длинный")
	// ErrStageContract - стадия вызвана с нарушением ее предусловий
	ErrStageContract = errors.New("нарушение контракта стадии")
)

// GenerationConfig - параметры генерации. Нулевые значения заменяются
// значениями по умолчанию.
type GenerationConfig struct {
	// OptionsCount - число вариантов ветвления на главу
	OptionsCount int
	// ChapterLength - целевая длина главы в словах
	ChapterLength int
	// SummaryLength - целевая длина краткого содержания в словах
	SummaryLength int
	// Language - целевой язык генерации (ru, en, zh)
	Language string
	// MaxRetries - повторы каждой стадии сверх первой попытки
	MaxRetries int
	// MaxSourceTokens - лимит токенов исходного текста стиля
	MaxSourceTokens int
	// AutoWriteMaxChapters - потолок глав за один запуск автописьма
	AutoWriteMaxChapters int
}

func (c GenerationConfig) withDefaults() GenerationConfig {
	if c.OptionsCount <= 0 {
		c.OptionsCount = 4
	}
	if c.ChapterLength <= 0 {
		c.ChapterLength = 400
	}
	if c.SummaryLength <= 0 {
		c.SummaryLength = 200
	}
	if c.Language == "" {
		c.Language = "ru"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = ai.DefaultMaxRetries
	}
	if c.MaxSourceTokens <= 0 {
		c.MaxSourceTokens = 12000
	}
	if c.AutoWriteMaxChapters <= 0 {
		c.AutoWriteMaxChapters = 10
	}
	return c
}

// StoryService - конвейер генерации: стиль, первая глава, продолжения.
// Каждая глава собирается тремя последовательными стадиями
// (черновик -> варианты -> оценки); глава попадает в дерево и в хранилище
// только после успеха всех стадий.
type StoryService struct {
	client  ai.Client
	styles  repository.WritingStyleRepository
	stories repository.StoryRepository
	cfg     GenerationConfig
	logger  *zap.Logger
}

// NewStoryService создает сервис генерации историй.
func NewStoryService(client ai.Client, styles repository.WritingStyleRepository, stories repository.StoryRepository, cfg GenerationConfig, logger *zap.Logger) *StoryService {
	return &StoryService{
		client:  client,
		styles:  styles,
		stories: stories,
		cfg:     cfg.withDefaults(),
		logger:  logger,
	}
}

func (s *StoryService) call(messages []ai.Message, fn ai.Function) ai.CallFunc {
	return func(ctx context.Context) ai.Result {
		return s.client.CallFunction(ctx, messages, fn)
	}
}

// GenerateWritingStyle извлекает стиль письма из исходного текста и
// сохраняет его.
func (s *StoryService) GenerateWritingStyle(ctx context.Context, source string) (*model.WritingStyle, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrEmptySource
	}

	if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
		tokens := len(enc.Encode(source, nil, nil))
		if tokens > s.cfg.MaxSourceTokens {
			return nil, fmt.Errorf("%w: %d токенов при лимите %d", ErrSourceTooLong, tokens, s.cfg.MaxSourceTokens)
		}
		s.logger.Info("извлечение стиля письма", zap.Int("sourceTokens", tokens))
	}

	payload, usage, err := ai.CallWithRetry(ctx, s.logger, "извлечение стиля письма", s.cfg.MaxRetries,
		s.call(styleMessages(source), styleFunction()), validateStyle)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	style := &model.WritingStyle{
		ID:         uuid.New(),
		Name:       payload.Name,
		SourceText: &source,
		Keywords:   strings.Join(payload.Keywords, ","),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.styles.Create(ctx, style); err != nil {
		return nil, fmt.Errorf("сохранение стиля: %w", err)
	}

	s.logger.Info("стиль письма извлечен",
		zap.String("styleID", style.ID.String()),
		zap.String("name", style.Name),
		zap.Int("promptTokens", usage.PromptTokens),
		zap.Int("completionTokens", usage.CompletionTokens),
		zap.Int64("timeMs", usage.TimeMS))
	return style, nil
}

// GenerateStory создает историю с корневой главой, ее вариантами и
// оценками. Счетчик использований стиля увеличивается после успеха.
func (s *StoryService) GenerateStory(ctx context.Context, styleID uuid.UUID) (*model.Story, error) {
	style, err := s.styles.GetByID(ctx, styleID)
	if err != nil {
		return nil, err
	}

	draft, usage, err := ai.CallWithRetry(ctx, s.logger, "генерация первой главы", s.cfg.MaxRetries,
		s.call(rootChapterMessages(s.cfg, style.Keywords), chapterFunction(s.cfg, true)), s.validateChapter(true))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	story := &model.Story{
		ID:          uuid.New(),
		Title:       draft.StoryTitle,
		StylePrompt: style.Keywords,
		ModelName:   s.client.ModelName(),
		IsPublic:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	chapter := &model.StoryChapter{
		ID:               uuid.New(),
		StoryID:          story.ID,
		Title:            draft.Title,
		Content:          draft.Content,
		CreatedAt:        now,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		GenerationTimeMS: usage.TimeMS,
	}
	story.Chapters = []*model.StoryChapter{chapter}

	if err := s.populateOptions(ctx, story, chapter); err != nil {
		return nil, err
	}

	if err := s.stories.Create(ctx, story); err != nil {
		return nil, fmt.Errorf("сохранение истории: %w", err)
	}
	if err := s.styles.IncrementUseCount(ctx, style.ID); err != nil {
		// история уже сохранена, несинхронный счетчик не повод ее терять
		s.logger.Warn("не удалось увеличить счетчик стиля", zap.Error(err))
	}

	s.logger.Info("история создана",
		zap.String("storyID", story.ID.String()),
		zap.String("title", story.Title),
		zap.Int("totalTokens", chapter.TotalTokens()),
		zap.Int64("timeMs", chapter.GenerationTimeMS))
	return story, nil
}

// GenerateNextChapter генерирует продолжение после указанной главы по
// выбранному варианту (0 - синтетический вариант "продолжить").
func (s *StoryService) GenerateNextChapter(ctx context.Context, storyID, previousChapterID uuid.UUID, optionOrder int) (*model.StoryChapter, error) {
	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	return s.generateNextChapter(ctx, story, previousChapterID, optionOrder, nil)
}

func (s *StoryService) generateNextChapter(ctx context.Context, story *model.Story, previousChapterID uuid.UUID, optionOrder int, personality *model.WriterPersonality) (*model.StoryChapter, error) {
	if story.Closed {
		return nil, model.ErrStoryClosed
	}
	previous, ok := story.Chapter(previousChapterID)
	if !ok || previous.Deleted {
		return nil, model.ErrChapterNotFound
	}
	option, ok := previous.FindOption(optionOrder)
	if !ok {
		return nil, model.ErrOptionNotFound
	}

	action := fmt.Sprintf("генерация главы истории %q после %q", story.Title, previous.Title)
	draft, usage, err := ai.CallWithRetry(ctx, s.logger, action, s.cfg.MaxRetries,
		s.call(nextChapterMessages(s.cfg, story, previous, option), chapterFunction(s.cfg, false)), s.validateChapter(false))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	summary := draft.PreviousSummary
	chapter := &model.StoryChapter{
		ID:                  uuid.New(),
		StoryID:             story.ID,
		Title:               draft.Title,
		Content:             draft.Content,
		PreviousSummary:     &summary,
		PreviousOptionOrder: optionOrder,
		CreatedAt:           now,
		PromptTokens:        usage.PromptTokens,
		CompletionTokens:    usage.CompletionTokens,
		GenerationTimeMS:    usage.TimeMS,
		PersonalityUsed:     personality,
	}
	// Ссылка нужна стадии вариантов для контекста предыдущей главы
	chapter.PreviousChapter = previous

	if err := s.populateOptions(ctx, story, chapter); err != nil {
		return nil, err
	}

	story.AppendChapter(previous, chapter)
	if err := s.stories.AppendChapter(ctx, story, chapter); err != nil {
		return nil, fmt.Errorf("сохранение главы: %w", err)
	}

	s.logger.Info("глава сгенерирована",
		zap.String("storyID", story.ID.String()),
		zap.String("chapterID", chapter.ID.String()),
		zap.Int("optionOrder", optionOrder),
		zap.Int("totalTokens", chapter.TotalTokens()),
		zap.Int64("timeMs", chapter.GenerationTimeMS))
	return chapter, nil
}

// populateOptions выполняет стадии вариантов и оценок для главы. Если
// модель отказалась ветвить сюжет (0 или 1 вариант), ставится единственный
// синтетический вариант "продолжить" и стадия оценок пропускается.
func (s *StoryService) populateOptions(ctx context.Context, story *model.Story, chapter *model.StoryChapter) error {
	action := fmt.Sprintf("генерация вариантов истории %q, глава %q", storyTitle(story, chapter), chapter.Title)
	payload, usage, err := ai.CallWithRetry(ctx, s.logger, action, s.cfg.MaxRetries,
		s.call(optionsMessages(s.cfg, story, chapter), optionsFunction(s.cfg)), s.validateOptions())
	chapter.PromptTokens += usage.PromptTokens
	chapter.CompletionTokens += usage.CompletionTokens
	chapter.GenerationTimeMS += usage.TimeMS
	if err != nil {
		return err
	}

	if len(payload.Options) <= 1 {
		chapter.Options = []*model.StoryChapterOption{{
			ID:          uuid.New(),
			ChapterID:   chapter.ID,
			Order:       model.ContinueOptionOrder,
			Name:        "Продолжить",
			Description: "Продолжить сюжет без ветвления",
			IsContinue:  true,
		}}
		return nil
	}

	chapter.Options = make([]*model.StoryChapterOption, 0, len(payload.Options))
	for _, p := range payload.Options {
		chapter.Options = append(chapter.Options, &model.StoryChapterOption{
			ID:          uuid.New(),
			ChapterID:   chapter.ID,
			Order:       p.Order,
			Name:        p.Name,
			Description: p.Description,
		})
	}

	return s.scoreOptions(ctx, story, chapter)
}

// scoreOptions выполняет стадию оценок и переносит оценки на исходные
// варианты. Остальное содержимое ответа стадии отбрасывается: источник
// истины для текста и номеров вариантов - стадия вариантов.
func (s *StoryService) scoreOptions(ctx context.Context, story *model.Story, chapter *model.StoryChapter) error {
	if len(chapter.Options) != s.cfg.OptionsCount {
		return fmt.Errorf("%w: стадия оценок ожидает %d вариантов, получено %d", ErrStageContract, s.cfg.OptionsCount, len(chapter.Options))
	}
	orders := make([]int, 0, len(chapter.Options))
	for _, option := range chapter.Options {
		if option.IsContinue || option.Scored() {
			return fmt.Errorf("%w: вариант %d не подлежит оценке", ErrStageContract, option.Order)
		}
		orders = append(orders, option.Order)
	}

	action := fmt.Sprintf("оценка вариантов истории %q, глава %q", storyTitle(story, chapter), chapter.Title)
	payload, usage, err := ai.CallWithRetry(ctx, s.logger, action, s.cfg.MaxRetries,
		s.call(scoresMessages(s.cfg, story, chapter), scoresFunction(s.cfg)), validateScores(orders))
	chapter.PromptTokens += usage.PromptTokens
	chapter.CompletionTokens += usage.CompletionTokens
	chapter.GenerationTimeMS += usage.TimeMS
	if err != nil {
		return err
	}

	for _, option := range chapter.Options {
		entry, _ := findScore(payload, option.Order)
		// Валидатор уже гарантировал наличие и разбор оценок
		option.Positivity, _ = strconv.Atoi(entry.Positivity)
		option.Impact, _ = strconv.Atoi(entry.Impact)
		option.Complexity, _ = strconv.Atoi(entry.Complexity)
	}
	return nil
}

func storyTitle(story *model.Story, chapter *model.StoryChapter) string {
	if story.Title != "" {
		return story.Title
	}
	return chapter.Title
}

// --- Чтение и удаление ---

// Story загружает историю с деревом глав.
func (s *StoryService) Story(ctx context.Context, id uuid.UUID) (*model.Story, error) {
	return s.stories.GetByID(ctx, id)
}

// Stories возвращает публичные истории, новые первыми.
func (s *StoryService) Stories(ctx context.Context) ([]*model.Story, error) {
	return s.stories.List(ctx, true)
}

// DeleteStory удаляет историю вместе с главами и вариантами.
func (s *StoryService) DeleteStory(ctx context.Context, id uuid.UUID) error {
	return s.stories.Delete(ctx, id)
}

// Style возвращает стиль по идентификатору.
func (s *StoryService) Style(ctx context.Context, id uuid.UUID) (*model.WritingStyle, error) {
	return s.styles.GetByID(ctx, id)
}

// Styles возвращает все сохраненные стили.
func (s *StoryService) Styles(ctx context.Context) ([]*model.WritingStyle, error) {
	return s.styles.List(ctx)
}

// UpdateStyle сохраняет правки имени и ключевых слов стиля.
func (s *StoryService) UpdateStyle(ctx context.Context, style *model.WritingStyle) error {
	style.UpdatedAt = time.Now().UTC()
	return s.styles.Update(ctx, style)
}

// DeleteStyle удаляет стиль.
func (s *StoryService) DeleteStyle(ctx context.Context, id uuid.UUID) error {
	return s.styles.Delete(ctx, id)
}
