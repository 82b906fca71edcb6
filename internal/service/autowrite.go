package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"textgame-server/internal/model"
)

// ChooseOption выбирает вариант продолжения под профиль автора: скалярное
// произведение оценок варианта на веса профиля, побеждает максимум. При
// равенстве побеждает вариант с меньшим номером, поэтому выбор детерминирован.
// Синтетический вариант "продолжить" выбирается безусловно.
func ChooseOption(personality model.WriterPersonality, options []*model.StoryChapterOption) (int, error) {
	weights, ok := personality.Weights()
	if !ok {
		return 0, model.ErrUnknownPersonality
	}
	if len(options) == 0 {
		return 0, model.ErrOptionNotFound
	}

	best := -1
	bestScore := 0.0
	for _, option := range options {
		if option.IsContinue {
			return option.Order, nil
		}
		if !option.Scored() {
			continue
		}
		score := float64(option.Positivity)*weights.Positivity +
			float64(option.Impact)*weights.Impact +
			float64(option.Complexity)*weights.Complexity
		if best == -1 || score > bestScore {
			best = option.Order
			bestScore = score
		}
	}
	if best == -1 {
		return 0, model.ErrOptionNotFound
	}
	return best, nil
}

// AutoWrite дописывает историю без участия читателя: на каждом шаге профиль
// выбирает вариант в конце канонического пути и генерируется новая глава.
// Возвращаются сгенерированные главы в порядке создания. При сбое генерации
// уже созданные главы сохранены, возвращаются вместе с ошибкой.
func (s *StoryService) AutoWrite(ctx context.Context, storyID uuid.UUID, personality model.WriterPersonality, chapters int) ([]*model.StoryChapter, error) {
	if _, ok := personality.Weights(); !ok {
		return nil, model.ErrUnknownPersonality
	}
	if chapters <= 0 {
		chapters = 1
	}
	if chapters > s.cfg.AutoWriteMaxChapters {
		chapters = s.cfg.AutoWriteMaxChapters
	}

	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}

	written := make([]*model.StoryChapter, 0, chapters)
	for i := 0; i < chapters; i++ {
		path := story.DefaultPath()
		if len(path) == 0 {
			return written, fmt.Errorf("%w: у истории нет глав", ErrStageContract)
		}
		tail := path[len(path)-1]

		order, err := ChooseOption(personality, tail.Options)
		if err != nil {
			return written, err
		}

		s.logger.Info("автописьмо: выбран вариант",
			zap.String("storyID", story.ID.String()),
			zap.String("personality", string(personality)),
			zap.Int("step", i+1),
			zap.Int("optionOrder", order))

		chapter, err := s.generateNextChapter(ctx, story, tail.ID, order, &personality)
		if err != nil {
			return written, err
		}
		written = append(written, chapter)
	}

	return written, nil
}
