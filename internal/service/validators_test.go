package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textgame-server/internal/ai"
)

func testService() *StoryService {
	return &StoryService{cfg: GenerationConfig{}.withDefaults()}
}

func validChapter(root bool) *chapterPayload {
	p := &chapterPayload{
		Title:   "Прибытие",
		Content: strings.Repeat("Дождь стучал по крышам старого города весь вечер. ", 10),
	}
	if root {
		p.StoryTitle = "Город дождя"
	} else {
		p.PreviousSummary = strings.Repeat("Герой добрался до города. ", 4)
	}
	return p
}

func TestValidateChapter(t *testing.T) {
	s := testService()

	t.Run("корневая глава проходит", func(t *testing.T) {
		assert.NoError(t, s.validateChapter(true)(validChapter(true)))
	})

	t.Run("некорневая глава проходит", func(t *testing.T) {
		assert.NoError(t, s.validateChapter(false)(validChapter(false)))
	})

	t.Run("короткий текст отвергается", func(t *testing.T) {
		p := validChapter(true)
		p.Content = "Коротко."
		assertValidation(t, s.validateChapter(true)(p))
	})

	t.Run("текст не на целевом языке отвергается", func(t *testing.T) {
		p := validChapter(true)
		p.Content = strings.Repeat("The rain fell on the old city all evening long. ", 10)
		assertValidation(t, s.validateChapter(true)(p))
	})

	t.Run("корневая глава без названия истории отвергается", func(t *testing.T) {
		p := validChapter(true)
		p.StoryTitle = ""
		assertValidation(t, s.validateChapter(true)(p))
	})

	t.Run("некорневая глава без краткого содержания отвергается", func(t *testing.T) {
		p := validChapter(false)
		p.PreviousSummary = ""
		assertValidation(t, s.validateChapter(false)(p))
	})

	t.Run("короткое краткое содержание отвергается", func(t *testing.T) {
		p := validChapter(false)
		p.PreviousSummary = "Мало."
		assertValidation(t, s.validateChapter(false)(p))
	})
}

func optionEntries(n int) []optionPayload {
	entries := make([]optionPayload, 0, n)
	for i := 1; i <= n; i++ {
		entries = append(entries, optionPayload{
			Order:       i,
			Name:        "Вариант развития",
			Description: "Описание варианта развития",
		})
	}
	return entries
}

func TestValidateOptions(t *testing.T) {
	s := testService()
	validate := s.validateOptions()

	t.Run("ровно четыре варианта проходят", func(t *testing.T) {
		assert.NoError(t, validate(&optionsPayload{Options: optionEntries(4)}))
	})

	t.Run("отказ от ветвления проходит", func(t *testing.T) {
		assert.NoError(t, validate(&optionsPayload{}))
		assert.NoError(t, validate(&optionsPayload{Options: optionEntries(1)}))
	})

	t.Run("промежуточное число вариантов отвергается", func(t *testing.T) {
		assertValidation(t, validate(&optionsPayload{Options: optionEntries(2)}))
		assertValidation(t, validate(&optionsPayload{Options: optionEntries(3)}))
	})

	t.Run("лишние варианты отвергаются", func(t *testing.T) {
		assertValidation(t, validate(&optionsPayload{Options: optionEntries(5)}))
	})

	t.Run("нарушение нумерации отвергается", func(t *testing.T) {
		entries := optionEntries(4)
		entries[2].Order = 7
		assertValidation(t, validate(&optionsPayload{Options: entries}))
	})

	t.Run("пустое название отвергается", func(t *testing.T) {
		entries := optionEntries(4)
		entries[0].Name = ""
		assertValidation(t, validate(&optionsPayload{Options: entries}))
	})
}

func scoreEntries(orders ...int) []scorePayload {
	entries := make([]scorePayload, 0, len(orders))
	for _, order := range orders {
		entries = append(entries, scorePayload{
			Order: order, Positivity: "3", Impact: "4", Complexity: "2",
		})
	}
	return entries
}

func TestValidateScores(t *testing.T) {
	orders := []int{1, 2, 3, 4}
	validate := validateScores(orders)

	t.Run("полный набор оценок проходит", func(t *testing.T) {
		assert.NoError(t, validate(&scoresPayload{Options: scoreEntries(1, 2, 3, 4)}))
	})

	t.Run("пропущенный вариант отвергается", func(t *testing.T) {
		assertValidation(t, validate(&scoresPayload{Options: scoreEntries(1, 2, 3)}))
	})

	t.Run("оценка вне диапазона отвергается", func(t *testing.T) {
		entries := scoreEntries(1, 2, 3, 4)
		entries[1].Impact = "6"
		assertValidation(t, validate(&scoresPayload{Options: entries}))
	})

	t.Run("нечисловая оценка отвергается", func(t *testing.T) {
		entries := scoreEntries(1, 2, 3, 4)
		entries[0].Positivity = "высокая"
		assertValidation(t, validate(&scoresPayload{Options: entries}))
	})
}

func assertValidation(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var invalid *ai.ValidationError
	assert.ErrorAs(t, err, &invalid)
}
