package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"textgame-server/internal/model"
)

// PgWritingStyleRepository хранит стили письма в PostgreSQL.
type PgWritingStyleRepository struct {
	pool *pgxpool.Pool
}

// NewPgWritingStyleRepository создает репозиторий стилей.
func NewPgWritingStyleRepository(pool *pgxpool.Pool) *PgWritingStyleRepository {
	return &PgWritingStyleRepository{pool: pool}
}

func (r *PgWritingStyleRepository) Create(ctx context.Context, style *model.WritingStyle) error {
	query := `
		INSERT INTO writing_styles (id, name, source_text, keywords, use_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		style.ID,
		style.Name,
		style.SourceText,
		style.Keywords,
		style.UseCount,
		style.CreatedAt,
		style.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка вставки стиля: %w", err)
	}
	return nil
}

func (r *PgWritingStyleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WritingStyle, error) {
	query := `
		SELECT id, name, source_text, keywords, use_count, created_at, updated_at
		FROM writing_styles
		WHERE id = $1
	`
	var style model.WritingStyle
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&style.ID,
		&style.Name,
		&style.SourceText,
		&style.Keywords,
		&style.UseCount,
		&style.CreatedAt,
		&style.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования стиля по ID: %w", err)
	}
	return &style, nil
}

func (r *PgWritingStyleRepository) List(ctx context.Context) ([]*model.WritingStyle, error) {
	query := `
		SELECT id, name, source_text, keywords, use_count, created_at, updated_at
		FROM writing_styles
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса списка стилей: %w", err)
	}
	defer rows.Close()

	var styles []*model.WritingStyle
	for rows.Next() {
		var style model.WritingStyle
		if err := rows.Scan(
			&style.ID,
			&style.Name,
			&style.SourceText,
			&style.Keywords,
			&style.UseCount,
			&style.CreatedAt,
			&style.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования стиля: %w", err)
		}
		styles = append(styles, &style)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения списка стилей: %w", err)
	}
	return styles, nil
}

func (r *PgWritingStyleRepository) Update(ctx context.Context, style *model.WritingStyle) error {
	query := `
		UPDATE writing_styles
		SET name = $2, keywords = $3, updated_at = $4
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, style.ID, style.Name, style.Keywords, style.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка обновления стиля: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *PgWritingStyleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM writing_styles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления стиля: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *PgWritingStyleRepository) IncrementUseCount(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE writing_styles
		SET use_count = use_count + 1, updated_at = $2
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("ошибка увеличения счетчика стиля: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
