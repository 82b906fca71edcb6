package model_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textgame-server/internal/model"
)

func newChapter(title string, parent *model.StoryChapter) *model.StoryChapter {
	c := &model.StoryChapter{ID: uuid.New(), Title: title}
	if parent != nil {
		parentID := parent.ID
		c.PreviousChapterID = &parentID
	}
	return c
}

func TestBuildLinks(t *testing.T) {
	root := newChapter("корень", nil)
	a := newChapter("а", root)
	b := newChapter("б", root)
	leaf := newChapter("лист", a)

	story := &model.Story{
		ID:       uuid.New(),
		Chapters: []*model.StoryChapter{root, a, b, leaf},
	}
	story.BuildLinks()

	assert.Nil(t, root.PreviousChapter)
	assert.Equal(t, []*model.StoryChapter{a, b}, root.NextChapters)
	assert.Same(t, root, a.PreviousChapter)
	assert.Same(t, root, b.PreviousChapter)
	assert.Equal(t, []*model.StoryChapter{leaf}, a.NextChapters)

	t.Run("повторный вызов не дублирует ссылки", func(t *testing.T) {
		story.BuildLinks()
		assert.Len(t, root.NextChapters, 2)
		assert.Len(t, a.NextChapters, 1)
	})
}

func TestBackLinksTerminateAtRoot(t *testing.T) {
	root := newChapter("корень", nil)
	story := &model.Story{Chapters: []*model.StoryChapter{root}}
	parent := root
	for i := 0; i < 5; i++ {
		c := newChapter("глава", parent)
		story.Chapters = append(story.Chapters, c)
		parent = c
	}
	story.BuildLinks()

	// у каждой главы, кроме корня, ровно один родитель; подъем по ссылкам
	// достигает корня за глубину шагов без повторов
	for depth, chapter := range story.Chapters {
		seen := map[uuid.UUID]bool{}
		steps := 0
		for c := chapter; c.PreviousChapter != nil; c = c.PreviousChapter {
			require.False(t, seen[c.ID], "цикл в дереве глав")
			seen[c.ID] = true
			steps++
		}
		assert.Equal(t, depth, steps)
	}
}

func TestBuildLinksSkipsDeleted(t *testing.T) {
	root := newChapter("корень", nil)
	removed := newChapter("удаленная", root)
	removed.Deleted = true
	kept := newChapter("живая", root)

	story := &model.Story{Chapters: []*model.StoryChapter{root, removed, kept}}
	story.BuildLinks()

	assert.Equal(t, []*model.StoryChapter{kept}, root.NextChapters)
	assert.Nil(t, removed.PreviousChapter)
}

func TestDefaultPath(t *testing.T) {
	root := newChapter("корень", nil)
	first := newChapter("первая ветка", root)
	second := newChapter("вторая ветка", root)
	tail := newChapter("хвост", second)

	story := &model.Story{Chapters: []*model.StoryChapter{root, first, second, tail}}
	story.BuildLinks()

	// канонический путь идет по последнему сгенерированному потомку
	path := story.DefaultPath()
	require.Len(t, path, 3)
	assert.Same(t, root, path[0])
	assert.Same(t, second, path[1])
	assert.Same(t, tail, path[2])
}

func TestDefaultPathEmptyStory(t *testing.T) {
	story := &model.Story{}
	assert.Nil(t, story.DefaultPath())
	assert.Nil(t, story.Root())
}

func TestFindOption(t *testing.T) {
	chapter := &model.StoryChapter{
		Options: []*model.StoryChapterOption{
			{Order: 1, Name: "первый"},
			{Order: 2, Name: "второй"},
		},
	}

	option, ok := chapter.FindOption(2)
	require.True(t, ok)
	assert.Equal(t, "второй", option.Name)

	_, ok = chapter.FindOption(3)
	assert.False(t, ok)
}

func TestAppendChapter(t *testing.T) {
	root := newChapter("корень", nil)
	story := &model.Story{ID: uuid.New(), Chapters: []*model.StoryChapter{root}}
	story.BuildLinks()

	next := &model.StoryChapter{ID: uuid.New(), Title: "продолжение", CreatedAt: time.Now().UTC()}
	story.AppendChapter(root, next)

	assert.Same(t, root, next.PreviousChapter)
	require.NotNil(t, next.PreviousChapterID)
	assert.Equal(t, root.ID, *next.PreviousChapterID)
	assert.Equal(t, story.ID, next.StoryID)
	assert.Equal(t, []*model.StoryChapter{next}, root.NextChapters)
	assert.Equal(t, next.CreatedAt, story.UpdatedAt)
	assert.Same(t, next, story.Chapters[len(story.Chapters)-1])
}

func TestOptionScored(t *testing.T) {
	option := &model.StoryChapterOption{Order: 1}
	assert.False(t, option.Scored())

	option.Positivity, option.Impact, option.Complexity = 3, 4, 2
	assert.True(t, option.Scored())
}
