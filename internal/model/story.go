package model

import (
	"time"

	"github.com/google/uuid"
)

// ContinueOptionOrder - порядковый номер синтетического варианта "продолжить",
// который ставится, когда модель отказалась ветвить сюжет.
const ContinueOptionOrder = 0

// Story - история с деревом глав. Главы хранятся плоским списком в порядке
// генерации; древовидная структура восстанавливается по обратным ссылкам
// PreviousChapterID (см. BuildLinks).
type Story struct {
	ID    uuid.UUID
	Title string
	// StylePrompt - снимок ключевых слов стиля на момент создания истории.
	// Последующие правки стиля на историю не влияют.
	StylePrompt string
	// ModelName - имя модели в формате "провайдер:модель"
	ModelName string
	IsPublic  bool
	// Closed - история закрыта, генерация новых глав запрещена
	Closed    bool
	CreatedAt time.Time
	UpdatedAt time.Time
	// Chapters - главы в порядке генерации. Первая глава всегда корневая.
	Chapters []*StoryChapter
}

// StoryChapter - одна глава истории.
type StoryChapter struct {
	ID      uuid.UUID
	StoryID uuid.UUID
	Title   string
	Content string
	// PreviousSummary - краткое содержание всего, что было до главы.
	// Отсутствует только у корневой главы.
	PreviousSummary *string
	// PreviousChapterID - невладеющая обратная ссылка на родителя.
	// Владеющая связь - список глав у Story.
	PreviousChapterID *uuid.UUID
	// PreviousOptionOrder - номер варианта родителя, который привел сюда.
	// 0 означает "продолжить без ветвления".
	PreviousOptionOrder int
	Options             []*StoryChapterOption
	PromptTokens        int
	CompletionTokens    int
	// GenerationTimeMS - суммарное время всех стадий генерации главы
	GenerationTimeMS int64
	CreatedAt        time.Time
	// Deleted - мягкое удаление; глава исключается из обхода дерева
	Deleted bool
	// PersonalityUsed - профиль автописьма, выбравший эту главу (если была автогенерация)
	PersonalityUsed *WriterPersonality

	// Ссылки дерева, восстанавливаются из PreviousChapterID. Не сохраняются.
	PreviousChapter *StoryChapter
	NextChapters    []*StoryChapter
}

// StoryChapterOption - вариант развития сюжета после главы.
type StoryChapterOption struct {
	ID        uuid.UUID
	ChapterID uuid.UUID
	// Order - порядковый номер 1..N, уникален в пределах главы.
	// 0 зарезервирован за синтетическим вариантом "продолжить".
	Order       int
	Name        string
	Description string
	IsContinue  bool
	// Оценки в диапазоне [1,5]; 0 - вариант еще не оценен
	Positivity int
	Impact     int
	Complexity int
}

// Scored сообщает, что все три оценки выставлены.
func (o *StoryChapterOption) Scored() bool {
	return o.Positivity != 0 && o.Impact != 0 && o.Complexity != 0
}

// TotalTokens возвращает суммарное число токенов, потраченных на главу.
func (c *StoryChapter) TotalTokens() int {
	return c.PromptTokens + c.CompletionTokens
}

// IsRoot - глава без родителя.
func (c *StoryChapter) IsRoot() bool {
	return c.PreviousChapterID == nil
}

// DefaultNextChapter - глава канонического пути: последний сгенерированный потомок.
func (c *StoryChapter) DefaultNextChapter() *StoryChapter {
	if len(c.NextChapters) == 0 {
		return nil
	}
	return c.NextChapters[len(c.NextChapters)-1]
}

// FindOption ищет вариант по номеру. Отсутствие варианта - не ошибка,
// решение принимает вызывающая сторона.
func (c *StoryChapter) FindOption(order int) (*StoryChapterOption, bool) {
	for _, o := range c.Options {
		if o.Order == order {
			return o, true
		}
	}
	return nil, false
}

// Root возвращает корневую главу истории.
func (s *Story) Root() *StoryChapter {
	if len(s.Chapters) == 0 {
		return nil
	}
	return s.Chapters[0]
}

// Chapter ищет главу по идентификатору среди глав истории.
func (s *Story) Chapter(id uuid.UUID) (*StoryChapter, bool) {
	for _, c := range s.Chapters {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// BuildLinks восстанавливает двунаправленные ссылки дерева из обратных
// ссылок на родителя. NextChapters заполняется в порядке генерации,
// мягко удаленные главы из обхода исключаются.
func (s *Story) BuildLinks() {
	byID := make(map[uuid.UUID]*StoryChapter, len(s.Chapters))
	for _, c := range s.Chapters {
		c.PreviousChapter = nil
		c.NextChapters = nil
		byID[c.ID] = c
	}
	for _, c := range s.Chapters {
		if c.PreviousChapterID == nil || c.Deleted {
			continue
		}
		parent, ok := byID[*c.PreviousChapterID]
		if !ok {
			continue
		}
		c.PreviousChapter = parent
		parent.NextChapters = append(parent.NextChapters, c)
	}
}

// DefaultPath - канонический порядок чтения: от корня всегда по
// DefaultNextChapter.
func (s *Story) DefaultPath() []*StoryChapter {
	var path []*StoryChapter
	for c := s.Root(); c != nil; c = c.DefaultNextChapter() {
		path = append(path, c)
	}
	return path
}

// AppendChapter привязывает новую главу как потомка parent и добавляет ее
// в список глав истории.
func (s *Story) AppendChapter(parent *StoryChapter, chapter *StoryChapter) {
	parentID := parent.ID
	chapter.StoryID = s.ID
	chapter.PreviousChapterID = &parentID
	chapter.PreviousChapter = parent
	parent.NextChapters = append(parent.NextChapters, chapter)
	s.Chapters = append(s.Chapters, chapter)
	s.UpdatedAt = chapter.CreatedAt
}
