package repository

import (
	"context"

	"github.com/google/uuid"

	"textgame-server/internal/model"
)

// WritingStyleRepository - доступ к сохраненным стилям письма.
type WritingStyleRepository interface {
	Create(ctx context.Context, style *model.WritingStyle) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.WritingStyle, error)
	List(ctx context.Context) ([]*model.WritingStyle, error)
	Update(ctx context.Context, style *model.WritingStyle) error
	Delete(ctx context.Context, id uuid.UUID) error
	// IncrementUseCount атомарно увеличивает счетчик использований стиля.
	IncrementUseCount(ctx context.Context, id uuid.UUID) error
}

// StoryRepository - доступ к историям и их дереву глав.
type StoryRepository interface {
	// Create сохраняет историю вместе с корневой главой и ее вариантами
	// в одной транзакции.
	Create(ctx context.Context, story *model.Story) error
	// GetByID загружает историю с полным деревом глав и вариантов;
	// ссылки дерева восстановлены (см. model.Story.BuildLinks).
	GetByID(ctx context.Context, id uuid.UUID) (*model.Story, error)
	// List возвращает истории без глав, новые первыми.
	List(ctx context.Context, publicOnly bool) ([]*model.Story, error)
	// Delete удаляет историю; главы и варианты удаляются каскадом.
	Delete(ctx context.Context, id uuid.UUID) error
	// AppendChapter сохраняет новую главу с вариантами и обновляет
	// updated_at истории в одной транзакции.
	AppendChapter(ctx context.Context, story *model.Story, chapter *model.StoryChapter) error
}
