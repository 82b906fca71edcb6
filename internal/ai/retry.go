package ai

import (
	"context"

	"go.uber.org/zap"
)

// DefaultMaxRetries - число повторов сверх первой попытки.
const DefaultMaxRetries = 5

// Usage - накопитель стоимости: токены и время всех попыток, включая
// неудачные, чтобы вызывающий видел истинную цену генерации.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TimeMS           int64
}

func (u *Usage) add(res Result) {
	u.PromptTokens += res.PromptTokens
	u.CompletionTokens += res.CompletionTokens
	u.TimeMS += res.LatencyMS
}

// CallFunc выполняет одну попытку вызова модели.
type CallFunc func(ctx context.Context) Result

// CallWithRetry повторяет вызов, пока валидатор не примет результат или не
// исчерпается бюджет попыток (1 + maxRetries). Повторяются все классы сбоев:
// транспорт, отсутствие структурированного ответа, ошибка разбора и отказ
// валидатора. Стоимость каждой попытки попадает в Usage независимо от исхода.
// Терминальный сбой один - ExhaustedError с последней причиной; отмена
// контекста прерывает цикл между попытками с ошибкой контекста.
func CallWithRetry[T any](ctx context.Context, logger *zap.Logger, action string, maxRetries int, call CallFunc, validate func(*T) error) (*T, Usage, error) {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	attempts := maxRetries + 1

	var usage Usage
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, usage, err
		}

		res := call(ctx)
		usage.add(res)

		if !res.OK {
			lastErr = res.Err
			logger.Warn("попытка вызова модели не удалась",
				zap.String("action", action),
				zap.Int("attempt", attempt),
				zap.Error(res.Err))
			continue
		}

		value, err := Decode[T](res)
		if err != nil {
			lastErr = err
			logger.Warn("ответ модели не разобрался",
				zap.String("action", action),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		if validate != nil {
			if err := validate(value); err != nil {
				lastErr = err
				logger.Warn("ответ модели отвергнут валидатором",
					zap.String("action", action),
					zap.Int("attempt", attempt),
					zap.Error(err))
				continue
			}
		}

		return value, usage, nil
	}

	return nil, usage, &ExhaustedError{Action: action, Attempts: attempts, Last: lastErr}
}
