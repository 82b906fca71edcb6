package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"textgame-server/internal/model"
)

// PgStoryRepository хранит истории, главы и варианты в PostgreSQL.
// Порядок генерации глав фиксируется колонкой seq (BIGSERIAL), чтение
// всегда идет по ней.
type PgStoryRepository struct {
	pool *pgxpool.Pool
}

// NewPgStoryRepository создает репозиторий историй.
func NewPgStoryRepository(pool *pgxpool.Pool) *PgStoryRepository {
	return &PgStoryRepository{pool: pool}
}

func (r *PgStoryRepository) Create(ctx context.Context, story *model.Story) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO stories (id, title, style_prompt, model_name, is_public, closed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.Exec(ctx, query,
		story.ID,
		story.Title,
		story.StylePrompt,
		story.ModelName,
		story.IsPublic,
		story.Closed,
		story.CreatedAt,
		story.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка вставки истории: %w", err)
	}

	for _, chapter := range story.Chapters {
		if err := insertChapter(ctx, tx, chapter); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

func (r *PgStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Story, error) {
	query := `
		SELECT id, title, style_prompt, model_name, is_public, closed, created_at, updated_at
		FROM stories
		WHERE id = $1
	`
	var story model.Story
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&story.ID,
		&story.Title,
		&story.StylePrompt,
		&story.ModelName,
		&story.IsPublic,
		&story.Closed,
		&story.CreatedAt,
		&story.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования истории по ID: %w", err)
	}

	if err := r.loadChapters(ctx, &story); err != nil {
		return nil, err
	}
	story.BuildLinks()
	return &story, nil
}

func (r *PgStoryRepository) loadChapters(ctx context.Context, story *model.Story) error {
	query := `
		SELECT id, story_id, title, content, previous_summary, previous_chapter_id,
		       previous_option_order, prompt_tokens, completion_tokens, generation_time_ms,
		       created_at, deleted, personality_used
		FROM story_chapters
		WHERE story_id = $1
		ORDER BY seq
	`
	rows, err := r.pool.Query(ctx, query, story.ID)
	if err != nil {
		return fmt.Errorf("ошибка запроса глав: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*model.StoryChapter)
	for rows.Next() {
		var chapter model.StoryChapter
		var personality *string
		if err := rows.Scan(
			&chapter.ID,
			&chapter.StoryID,
			&chapter.Title,
			&chapter.Content,
			&chapter.PreviousSummary,
			&chapter.PreviousChapterID,
			&chapter.PreviousOptionOrder,
			&chapter.PromptTokens,
			&chapter.CompletionTokens,
			&chapter.GenerationTimeMS,
			&chapter.CreatedAt,
			&chapter.Deleted,
			&personality,
		); err != nil {
			return fmt.Errorf("ошибка сканирования главы: %w", err)
		}
		if personality != nil {
			p := model.WriterPersonality(*personality)
			chapter.PersonalityUsed = &p
		}
		story.Chapters = append(story.Chapters, &chapter)
		byID[chapter.ID] = &chapter
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("ошибка чтения глав: %w", err)
	}

	return r.loadOptions(ctx, story.ID, byID)
}

func (r *PgStoryRepository) loadOptions(ctx context.Context, storyID uuid.UUID, chapters map[uuid.UUID]*model.StoryChapter) error {
	query := `
		SELECT o.id, o.chapter_id, o.option_order, o.name, o.description,
		       o.is_continue, o.positivity, o.impact, o.complexity
		FROM story_chapter_options o
		JOIN story_chapters c ON c.id = o.chapter_id
		WHERE c.story_id = $1
		ORDER BY c.seq, o.option_order
	`
	rows, err := r.pool.Query(ctx, query, storyID)
	if err != nil {
		return fmt.Errorf("ошибка запроса вариантов: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var option model.StoryChapterOption
		if err := rows.Scan(
			&option.ID,
			&option.ChapterID,
			&option.Order,
			&option.Name,
			&option.Description,
			&option.IsContinue,
			&option.Positivity,
			&option.Impact,
			&option.Complexity,
		); err != nil {
			return fmt.Errorf("ошибка сканирования варианта: %w", err)
		}
		chapter, ok := chapters[option.ChapterID]
		if !ok {
			// вариант ссылается на главу другой истории, схема этого не допускает
			return fmt.Errorf("вариант %s ссылается на неизвестную главу %s", option.ID, option.ChapterID)
		}
		chapter.Options = append(chapter.Options, &option)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("ошибка чтения вариантов: %w", err)
	}
	return nil
}

func (r *PgStoryRepository) List(ctx context.Context, publicOnly bool) ([]*model.Story, error) {
	query := `
		SELECT id, title, style_prompt, model_name, is_public, closed, created_at, updated_at
		FROM stories
		WHERE $1 = false OR is_public
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, publicOnly)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса списка историй: %w", err)
	}
	defer rows.Close()

	var stories []*model.Story
	for rows.Next() {
		var story model.Story
		if err := rows.Scan(
			&story.ID,
			&story.Title,
			&story.StylePrompt,
			&story.ModelName,
			&story.IsPublic,
			&story.Closed,
			&story.CreatedAt,
			&story.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования истории: %w", err)
		}
		stories = append(stories, &story)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения списка историй: %w", err)
	}
	return stories, nil
}

func (r *PgStoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления истории: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	log.Info().Str("storyID", id.String()).Msg("история удалена")
	return nil
}

func (r *PgStoryRepository) AppendChapter(ctx context.Context, story *model.Story, chapter *model.StoryChapter) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertChapter(ctx, tx, chapter); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `UPDATE stories SET updated_at = $2 WHERE id = $1`, story.ID, story.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка обновления истории: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

func insertChapter(ctx context.Context, tx pgx.Tx, chapter *model.StoryChapter) error {
	query := `
		INSERT INTO story_chapters (id, story_id, title, content, previous_summary,
			previous_chapter_id, previous_option_order, prompt_tokens, completion_tokens,
			generation_time_ms, created_at, deleted, personality_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	var personality *string
	if chapter.PersonalityUsed != nil {
		p := string(*chapter.PersonalityUsed)
		personality = &p
	}
	_, err := tx.Exec(ctx, query,
		chapter.ID,
		chapter.StoryID,
		chapter.Title,
		chapter.Content,
		chapter.PreviousSummary,
		chapter.PreviousChapterID,
		chapter.PreviousOptionOrder,
		chapter.PromptTokens,
		chapter.CompletionTokens,
		chapter.GenerationTimeMS,
		chapter.CreatedAt,
		chapter.Deleted,
		personality,
	)
	if err != nil {
		return fmt.Errorf("ошибка вставки главы: %w", err)
	}

	for _, option := range chapter.Options {
		if err := insertOption(ctx, tx, option); err != nil {
			return err
		}
	}
	return nil
}

func insertOption(ctx context.Context, tx pgx.Tx, option *model.StoryChapterOption) error {
	query := `
		INSERT INTO story_chapter_options (id, chapter_id, option_order, name, description,
			is_continue, positivity, impact, complexity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.Exec(ctx, query,
		option.ID,
		option.ChapterID,
		option.Order,
		option.Name,
		option.Description,
		option.IsContinue,
		option.Positivity,
		option.Impact,
		option.Complexity,
	)
	if err != nil {
		return fmt.Errorf("ошибка вставки варианта: %w", err)
	}
	return nil
}
