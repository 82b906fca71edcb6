package service

import (
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"

	"textgame-server/internal/ai"
	"textgame-server/internal/model"
)

// Полезные нагрузки структурированных ответов модели, по одной на стадию.

type stylePayload struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

type chapterPayload struct {
	StoryTitle      string `json:"story_title,omitempty"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	PreviousSummary string `json:"previous_summary,omitempty"`
}

type optionPayload struct {
	Order       int    `json:"order"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type optionsPayload struct {
	Options []optionPayload `json:"options"`
}

type scorePayload struct {
	Order      int    `json:"order"`
	Positivity string `json:"positivity"`
	Impact     string `json:"impact"`
	Complexity string `json:"complexity"`
}

type scoresPayload struct {
	Options []scorePayload `json:"options"`
}

var scoreEnum = []string{"1", "2", "3", "4", "5"}

// --- Стадия извлечения стиля ---

func styleMessages(source string) []ai.Message {
	return []ai.Message{
		ai.SystemMessage("Ты опытный литературный редактор. Ты читаешь большие фрагменты художественных произведений и точно, сжатым языком выделяешь их особенности. Сведи особенности к 5-15 ключевым словам, каждое не длиннее 20 символов. По этим ключевым словам другая языковая модель должна максимально точно воспроизводить стиль автора. Дальше тебе будет передан фрагмент произведения."),
		ai.UserMessage(source),
	}
}

func styleFunction() ai.Function {
	return ai.Function{
		Name:        "writing_style",
		Description: "Выделить стиль письма из фрагмента произведения",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"name": {
					Type:        jsonschema.String,
					Description: "Название стиля, не длиннее 10 слов",
				},
				"keywords": {
					Type: jsonschema.Array,
					Items: &jsonschema.Definition{
						Type:        jsonschema.String,
						Description: "Ключевое слово стиля: существительное или сочетание прилагательное+существительное, глагол+существительное; не длиннее 20 символов; без знаков препинания; без имен персонажей",
					},
				},
			},
			Required: []string{"name", "keywords"},
		},
	}
}

// --- Стадия черновика главы ---

func rootChapterMessages(cfg GenerationConfig, styleKeywords string) []ai.Message {
	return []ai.Message{
		ai.SystemMessage(fmt.Sprintf("Ты писатель, ты пишешь длинную историю.\nСтиль всей истории описан ключевыми словами: %s", styleKeywords)),
		ai.UserMessage(fmt.Sprintf("Напиши первую главу истории. Нужно представить место действия и главных героев, описания должны быть подробными. Рекомендуемая длина %d слов.", cfg.ChapterLength)),
	}
}

func nextChapterMessages(cfg GenerationConfig, story *model.Story, previous *model.StoryChapter, option *model.StoryChapterOption) []ai.Message {
	messages := []ai.Message{
		ai.SystemMessage("Ты писатель, ты пишешь длинную историю глава за главой.\nТебе известны предыстория, содержание прошлой главы и направление развития текущей главы.\nНа этой основе напиши текст новой главы и составь краткое содержание всего, что было до нее."),
		ai.SystemMessage(fmt.Sprintf("Стиль всей истории описан ключевыми словами:\n%s", story.StylePrompt)),
	}

	if previous.PreviousSummary != nil && *previous.PreviousSummary != "" {
		messages = append(messages, ai.UserMessage(fmt.Sprintf("Краткое содержание предыдущих глав:\n%s", *previous.PreviousSummary)))
	}
	messages = append(messages, ai.UserMessage(fmt.Sprintf("Текст предыдущей главы:\n%s", previous.Content)))

	requirement := fmt.Sprintf("Требование к сюжету новой главы: %s. %s.", option.Name, option.Description)
	if option.Scored() {
		requirement += fmt.Sprintf("\nМасштаб последствий: %d из 5 (1 - минимальный, 5 - максимальный).\nПозитивность: %d из 5 (1 - самый мрачный исход, 5 - самый светлый).\nСложность: %d из 5 (1 - самый простой поворот, 5 - самый запутанный).",
			option.Impact, option.Positivity, option.Complexity)
	}
	requirement += fmt.Sprintf("\nРекомендуемая длина главы %d слов.", cfg.ChapterLength)
	messages = append(messages, ai.UserMessage(requirement))

	messages = append(messages, ai.SystemMessage("Рассказывай через действия, диалоги и описания; избегай голого пересказа сюжета."))
	return messages
}

func chapterFunction(cfg GenerationConfig, root bool) ai.Function {
	properties := map[string]jsonschema.Definition{
		"title": {
			Type:        jsonschema.String,
			Description: "Название главы, не длиннее 4 слов. Без нумерации вида \"Глава первая\"",
		},
		"content": {
			Type:        jsonschema.String,
			Description: fmt.Sprintf("Текст главы, рекомендуемая длина %d слов", cfg.ChapterLength),
		},
	}
	required := []string{"title", "content"}

	description := "Текст главы"
	if root {
		properties["story_title"] = jsonschema.Definition{
			Type:        jsonschema.String,
			Description: "Название всей истории, не длиннее 4 слов",
		}
		required = append(required, "story_title")
	} else {
		properties["previous_summary"] = jsonschema.Definition{
			Type:        jsonschema.String,
			Description: fmt.Sprintf("Краткое содержание всех предыдущих глав, рекомендуемая длина %d слов", cfg.SummaryLength),
		}
		required = append(required, "previous_summary")
		description = "Текст новой главы и краткое содержание предыдущих"
	}

	return ai.Function{
		Name:        "chapter",
		Description: description,
		Parameters: jsonschema.Definition{
			Type:       jsonschema.Object,
			Properties: properties,
			Required:   required,
		},
	}
}

// --- Стадия вариантов продолжения ---

func optionsMessages(cfg GenerationConfig, story *model.Story, chapter *model.StoryChapter) []ai.Message {
	messages := []ai.Message{
		ai.SystemMessage(fmt.Sprintf("Ты писатель, ты пишешь длинную историю. Для последней главы придумай %d вариантов развития сюжета, каждый в своем ключе.", cfg.OptionsCount)),
		ai.SystemMessage(fmt.Sprintf("Стиль всей истории описан ключевыми словами:\n%s", story.StylePrompt)),
	}

	if prev := chapter.PreviousChapter; prev != nil {
		if prev.PreviousSummary != nil && *prev.PreviousSummary != "" {
			messages = append(messages, ai.UserMessage(fmt.Sprintf("Краткое содержание предыдущих глав:\n%s", *prev.PreviousSummary)))
		}
		messages = append(messages, ai.UserMessage(fmt.Sprintf("Текст предыдущей главы:\n%s", prev.Content)))
	}

	messages = append(messages,
		ai.UserMessage(fmt.Sprintf("Текст последней главы:\n%s", chapter.Content)),
		ai.UserMessage(fmt.Sprintf("Придумай %d вариантов развития сюжета. Варианты должны отличаться: по масштабу последствий, по тону (и светлые, и мрачные), по сложности.", cfg.OptionsCount)),
	)
	return messages
}

func optionsFunction(cfg GenerationConfig) ai.Function {
	return ai.Function{
		Name:        "options",
		Description: fmt.Sprintf("Придумать %d вариантов развития сюжета", cfg.OptionsCount),
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"options": {
					Type: jsonschema.Array,
					Items: &jsonschema.Definition{
						Type: jsonschema.Object,
						Properties: map[string]jsonschema.Definition{
							"order": {
								Type:        jsonschema.Integer,
								Description: fmt.Sprintf("Порядковый номер варианта, от 1 до %d", cfg.OptionsCount),
							},
							"name": {
								Type:        jsonschema.String,
								Description: "Название варианта, не длиннее 4 слов",
							},
							"description": {
								Type:        jsonschema.String,
								Description: "Пояснение варианта, не длиннее 8 слов",
							},
						},
						Required: []string{"order", "name", "description"},
					},
				},
			},
			Required: []string{"options"},
		},
	}
}

// --- Стадия оценки вариантов ---

func scoresMessages(cfg GenerationConfig, story *model.Story, chapter *model.StoryChapter) []ai.Message {
	lines := make([]string, 0, len(chapter.Options))
	for i, option := range chapter.Options {
		lines = append(lines, fmt.Sprintf("%d. %s %s", i+1, option.Name, option.Description))
	}

	return []ai.Message{
		ai.SystemMessage(fmt.Sprintf("Ты писатель, ты пишешь длинную историю. У сюжета появилось %d вариантов развития; оцени каждый по трем осям: масштаб последствий, позитивность и сложность.", cfg.OptionsCount)),
		ai.SystemMessage(fmt.Sprintf("Стиль всей истории описан ключевыми словами:\n%s", story.StylePrompt)),
		ai.UserMessage(fmt.Sprintf("Текст последней главы:\n%s", chapter.Content)),
		ai.UserMessage(fmt.Sprintf("Его %d вариантов развития:\n%s", cfg.OptionsCount, strings.Join(lines, "\n"))),
	}
}

func scoresFunction(cfg GenerationConfig) ai.Function {
	return ai.Function{
		Name:        "options_score",
		Description: "Оценить каждый вариант развития сюжета",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"options": {
					Type: jsonschema.Array,
					Items: &jsonschema.Definition{
						Type: jsonschema.Object,
						Properties: map[string]jsonschema.Definition{
							"order": {
								Type:        jsonschema.Integer,
								Description: fmt.Sprintf("Порядковый номер варианта, от 1 до %d", cfg.OptionsCount),
							},
							"positivity": {
								Type:        jsonschema.String,
								Enum:        scoreEnum,
								Description: "Позитивность варианта от 1 до 5: 1 - самый мрачный, 5 - самый светлый",
							},
							"impact": {
								Type:        jsonschema.String,
								Enum:        scoreEnum,
								Description: "Масштаб последствий от 1 до 5: 1 - минимальный, 5 - максимальный",
							},
							"complexity": {
								Type:        jsonschema.String,
								Enum:        scoreEnum,
								Description: "Сложность варианта от 1 до 5: 1 - самый простой, 5 - самый запутанный",
							},
						},
						Required: []string{"order", "positivity", "impact", "complexity"},
					},
				},
			},
			Required: []string{"options"},
		},
	}
}
