package model

import (
	"time"

	"github.com/google/uuid"
)

// WritingStyle - сохраненный стиль письма: набор ключевых слов,
// извлеченных из исходного текста. Исходный текст после извлечения
// не меняется, имя и ключевые слова можно править.
type WritingStyle struct {
	ID         uuid.UUID
	Name       string
	SourceText *string
	// Keywords - ключевые слова стиля, разделенные запятыми
	Keywords string
	// UseCount - сколько историй начато с этого стиля
	UseCount  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
