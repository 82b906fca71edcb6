package ai

import "fmt"

// Классы сбоев одного вызова модели. Все четыре повторяемы внутри
// CallWithRetry; наружу уходит только ExhaustedError.

// TransportError - сетевая ошибка, ошибка авторизации или ошибка самого API.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ошибка вызова модели: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SchemaError - модель ответила, но не вернула запрошенный структурированный вызов.
type SchemaError struct {
	Message string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("нет структурированного ответа: %s", e.Message)
}

// ParseError - аргументы структурированного вызова не разобрались в целевой
// тип даже после санации.
type ParseError struct {
	Err error
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ошибка разбора ответа модели: %v\n%s", e.Err, e.Raw)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError - ответ разобран, но отвергнут доменным валидатором.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalidf создает ValidationError с форматированием.
func Invalidf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ExhaustedError - единственный терминальный сбой: бюджет попыток исчерпан.
// Несет имя действия и последнюю причину отказа.
type ExhaustedError struct {
	Action   string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("действие %q не удалось после %d попыток: %v", e.Action, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }
