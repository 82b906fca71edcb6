package ai

import "strings"

// SanitizeFunctionArguments чинит известный дефект вывода модели: сырые байты
// перевода строки внутри строковых значений JSON, что синтаксически
// недопустимо. Серия \r/\n внутри строки схлопывается в
// escape-последовательность `\n`. Все вне строковых значений и уже имеющиеся
// escape-последовательности не трогаются. Функция идемпотентна: вход без
// сырых переводов строки в строках возвращается без изменений.
func SanitizeFunctionArguments(raw string) string {
	if !hasNewlineInString(raw) {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw))

	inString := false
	escaped := false
	for i := 0; i < len(raw); i++ {
		ch := raw[i]

		if inString && (ch == '\n' || ch == '\r') {
			for i+1 < len(raw) && (raw[i+1] == '\n' || raw[i+1] == '\r') {
				i++
			}
			b.WriteString(`\n`)
			escaped = false
			continue
		}

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
		} else if ch == '"' {
			inString = true
		}

		b.WriteByte(ch)
	}
	return b.String()
}

// hasNewlineInString сообщает, есть ли сырой перевод строки лексически внутри
// строкового значения. Позволяет не копировать уже корректный вход.
func hasNewlineInString(raw string) bool {
	inString := false
	escaped := false
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if inString && (ch == '\n' || ch == '\r') {
			return true
		}
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
		} else if ch == '"' {
			inString = true
		}
	}
	return false
}
