package service

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"textgame-server/internal/ai"
)

// Таблица письменностей по целевому языку генерации. Проверка наличия
// письменности - эвристика "язык ответа похож на нужный", не гарантия;
// поэтому диапазон настраивается, а не зашит.
var languageScripts = map[string]*unicode.RangeTable{
	"ru": unicode.Cyrillic,
	"en": unicode.Latin,
	"zh": unicode.Han,
}

func scriptFor(language string) *unicode.RangeTable {
	if table, ok := languageScripts[language]; ok {
		return table
	}
	return unicode.Cyrillic
}

// containsScript сообщает, есть ли в строке хотя бы один символ целевой
// письменности.
func containsScript(s string, table *unicode.RangeTable) bool {
	for _, r := range s {
		if unicode.Is(table, r) {
			return true
		}
	}
	return false
}

// validateChapter проверяет черновик главы: непустые заголовок и текст с
// символами целевой письменности, грубая нижняя граница длины текста
// (половина целевой длины в символах), для некорневых глав - краткое
// содержание не короче четверти целевой длины.
func (s *StoryService) validateChapter(root bool) func(*chapterPayload) error {
	table := scriptFor(s.cfg.Language)
	return func(p *chapterPayload) error {
		if p.Title == "" || !containsScript(p.Title, table) {
			return ai.Invalidf("заголовок главы пуст или не на целевом языке: %q", p.Title)
		}
		if p.Content == "" || !containsScript(p.Content, table) {
			return ai.Invalidf("текст главы пуст или не на целевом языке")
		}
		if n := utf8.RuneCountInString(p.Content); n < s.cfg.ChapterLength/2 {
			return ai.Invalidf("текст главы слишком короткий: %d символов", n)
		}
		if root {
			if p.StoryTitle == "" || !containsScript(p.StoryTitle, table) {
				return ai.Invalidf("название истории пусто или не на целевом языке: %q", p.StoryTitle)
			}
			return nil
		}
		if p.PreviousSummary == "" || !containsScript(p.PreviousSummary, table) {
			return ai.Invalidf("краткое содержание пусто или не на целевом языке")
		}
		if n := utf8.RuneCountInString(p.PreviousSummary); n < s.cfg.SummaryLength/4 {
			return ai.Invalidf("краткое содержание слишком короткое: %d символов", n)
		}
		return nil
	}
}

// validateOptions принимает либо ровно N вариантов с номерами 1..N, либо
// отказ от ветвления (0 или 1 вариант) - тогда ставится синтетический
// вариант "продолжить". Промежуточные количества отвергаются и повторяются.
func (s *StoryService) validateOptions() func(*optionsPayload) error {
	table := scriptFor(s.cfg.Language)
	n := s.cfg.OptionsCount
	return func(p *optionsPayload) error {
		if len(p.Options) <= 1 {
			return nil
		}
		if len(p.Options) != n {
			return ai.Invalidf("неверное число вариантов: %d вместо %d", len(p.Options), n)
		}
		for i, option := range p.Options {
			if option.Order != i+1 {
				return ai.Invalidf("неверный номер варианта на позиции %d: %d", i+1, option.Order)
			}
			if option.Name == "" || !containsScript(option.Name, table) {
				return ai.Invalidf("название варианта %d пусто или не на целевом языке", option.Order)
			}
			if option.Description == "" || !containsScript(option.Description, table) {
				return ai.Invalidf("описание варианта %d пусто или не на целевом языке", option.Order)
			}
		}
		return nil
	}
}

// validateScores требует оценку для каждого из исходных номеров вариантов,
// все три оценки должны разбираться в целые из [1,5].
func validateScores(orders []int) func(*scoresPayload) error {
	return func(p *scoresPayload) error {
		for _, order := range orders {
			entry, ok := findScore(p, order)
			if !ok {
				return ai.Invalidf("нет оценки для варианта %d", order)
			}
			for _, raw := range []string{entry.Positivity, entry.Impact, entry.Complexity} {
				v, err := strconv.Atoi(raw)
				if err != nil || v < 1 || v > 5 {
					return ai.Invalidf("некорректная оценка варианта %d: %q", order, raw)
				}
			}
		}
		return nil
	}
}

func findScore(p *scoresPayload, order int) (*scorePayload, bool) {
	for i := range p.Options {
		if p.Options[i].Order == order {
			return &p.Options[i], true
		}
	}
	return nil, false
}

// validateStyle проверяет результат извлечения стиля: непустое имя и от 1
// ключевого слова.
func validateStyle(p *stylePayload) error {
	if p.Name == "" {
		return ai.Invalidf("пустое название стиля")
	}
	if len(p.Keywords) == 0 {
		return ai.Invalidf("пустой список ключевых слов")
	}
	for _, kw := range p.Keywords {
		if kw == "" {
			return ai.Invalidf("пустое ключевое слово в списке")
		}
	}
	return nil
}
