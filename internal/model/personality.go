package model

import "strings"

// WriterPersonality - профиль автора для автоматического выбора ветки.
type WriterPersonality string

const (
	PersonalityDramatic   WriterPersonality = "dramatic"
	PersonalitySimplistic WriterPersonality = "simplistic"
	PersonalityDarkness   WriterPersonality = "darkness"
	PersonalityIntricate  WriterPersonality = "intricate"
	PersonalityNeutral    WriterPersonality = "neutral"
)

// PersonalityWeights - веса профиля по трем осям оценки варианта.
// Каждый вес лежит в диапазоне [-1, 1].
type PersonalityWeights struct {
	Positivity float64
	Impact     float64
	Complexity float64
}

// Таблица весов строится один раз при старте процесса и не мутирует.
var personalityWeights = map[WriterPersonality]PersonalityWeights{
	PersonalityDramatic:   {Positivity: 0, Impact: 0.9, Complexity: 0.8},
	PersonalitySimplistic: {Positivity: 0.9, Impact: -0.5, Complexity: -0.8},
	PersonalityDarkness:   {Positivity: -0.9, Impact: 0.7, Complexity: 0.6},
	PersonalityIntricate:  {Positivity: 0.2, Impact: -0.3, Complexity: 1},
	PersonalityNeutral:    {Positivity: 1, Impact: 1, Complexity: 1},
}

// Weights возвращает веса профиля. Второе значение false для неизвестного профиля.
func (p WriterPersonality) Weights() (PersonalityWeights, bool) {
	w, ok := personalityWeights[p]
	return w, ok
}

// ParsePersonality разбирает имя профиля без учета регистра.
func ParsePersonality(s string) (WriterPersonality, error) {
	p := WriterPersonality(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := personalityWeights[p]; !ok {
		return "", ErrUnknownPersonality
	}
	return p, nil
}

// Personalities возвращает список всех известных профилей.
func Personalities() []WriterPersonality {
	return []WriterPersonality{
		PersonalityDramatic,
		PersonalitySimplistic,
		PersonalityDarkness,
		PersonalityIntricate,
		PersonalityNeutral,
	}
}
