package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"
)

// Поддерживаемые провайдеры
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// DefaultTimeout - фиксированный таймаут одного запроса к модели.
const DefaultTimeout = 180 * time.Second

// Message - одно сообщение диалога с ролью.
type Message struct {
	Role    string
	Content string
}

// Роли сообщений
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// SystemMessage создает системное сообщение.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// UserMessage создает сообщение пользователя.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// Function - именованная схема структурированного ответа. Модель обязана
// вернуть аргументы, соответствующие Parameters.
type Function struct {
	Name        string
	Description string
	Parameters  jsonschema.Definition
}

// Result - итог одного вызова. Вызов никогда не паникует и не возвращает
// ошибку через второй результат: сбой любого уровня (транспорт, отсутствие
// структурированного ответа) описывается полями OK/Err, чтобы вызывающий
// мог повторить без исключений в потоке управления.
type Result struct {
	OK  bool
	Err error
	// Raw - сырые аргументы вызова функции, для диагностики и разбора
	Raw              string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
}

// Client выполняет один вызов модели со структурированным ответом.
// Клиент без состояния между вызовами, сам не повторяет и не валидирует
// доменный смысл ответа.
type Client interface {
	CallFunction(ctx context.Context, messages []Message, fn Function) Result
	ModelName() string
}

// Config - конфигурация клиента модели.
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	// Proxy - адрес HTTP прокси; пустая строка - прокси из окружения
	Proxy   string
	Timeout time.Duration
}

// New создает клиента для выбранного провайдера.
func New(cfg Config, logger *zap.Logger) (Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	switch cfg.Provider {
	case "", ProviderOpenAI:
		return newOpenAIClient(cfg, logger)
	case ProviderOllama:
		return newOllamaClient(cfg, logger)
	default:
		return nil, fmt.Errorf("неизвестный провайдер AI: %q", cfg.Provider)
	}
}

// Decode применяет санитайзер и разбирает аргументы вызова в T.
func Decode[T any](res Result) (*T, error) {
	if !res.OK {
		return nil, res.Err
	}
	clean := SanitizeFunctionArguments(res.Raw)
	var value T
	if err := json.Unmarshal([]byte(clean), &value); err != nil {
		return nil, &ParseError{Err: err, Raw: res.Raw}
	}
	return &value, nil
}

// --- Реализация на OpenAI-совместимом API ---

type openAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func newOpenAIClient(cfg Config, logger *zap.Logger) (*openAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("не указан API ключ")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT3Dot5Turbo0613
	}

	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("некорректный адрес прокси %q: %w", cfg.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}

	return &openAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: logger,
	}, nil
}

func (c *openAIClient) ModelName() string {
	return ProviderOpenAI + ":" + c.model
}

// CallFunction выполняет один запрос с принудительным вызовом функции fn.
func (c *openAIClient) CallFunction(ctx context.Context, messages []Message, fn Function) Result {
	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: chatMessages,
		Functions: []openai.FunctionDefinition{{
			Name:        fn.Name,
			Description: fn.Description,
			Parameters:  fn.Parameters,
		}},
		// Принуждаем модель к вызову именно этой функции
		FunctionCall: map[string]string{"name": fn.Name},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	res := Result{LatencyMS: time.Since(start).Milliseconds()}

	if err != nil {
		res.Err = &TransportError{Err: err}
		observeCall(c.ModelName(), fn.Name, "error", res)
		return res
	}

	res.PromptTokens = resp.Usage.PromptTokens
	res.CompletionTokens = resp.Usage.CompletionTokens

	if len(resp.Choices) == 0 || resp.Choices[0].Message.FunctionCall == nil {
		res.Err = &SchemaError{Message: fmt.Sprintf("модель не вызвала функцию %q", fn.Name)}
		observeCall(c.ModelName(), fn.Name, "no_function_call", res)
		return res
	}

	res.OK = true
	res.Raw = resp.Choices[0].Message.FunctionCall.Arguments
	observeCall(c.ModelName(), fn.Name, "success", res)

	c.logger.Debug("вызов функции завершен",
		zap.String("function", fn.Name),
		zap.Int64("latencyMs", res.LatencyMS),
		zap.Int("promptTokens", res.PromptTokens),
		zap.Int("completionTokens", res.CompletionTokens))

	return res
}
