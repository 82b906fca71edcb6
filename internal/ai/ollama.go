package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// ollamaClient - альтернативный бэкенд на нативном API ollama.
type ollamaClient struct {
	client *api.Client
	model  string
	logger *zap.Logger
}

func newOllamaClient(cfg Config, logger *zap.Logger) (*ollamaClient, error) {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/v1")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("некорректный Ollama Base URL %q: %w", cfg.BaseURL, err)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("не указана модель для провайдера %s", ProviderOllama)
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &ollamaClient{
		client: api.NewClient(parsedURL, httpClient),
		model:  cfg.Model,
		logger: logger,
	}, nil
}

func (c *ollamaClient) ModelName() string {
	return ProviderOllama + ":" + c.model
}

// CallFunction выполняет один запрос с объявленным инструментом fn и ждет
// вызова инструмента в ответе.
func (c *ollamaClient) CallFunction(ctx context.Context, messages []Message, fn Function) Result {
	chatMessages := make([]api.Message, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, api.Message{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	tool, err := toOllamaTool(fn)
	if err != nil {
		return Result{Err: &SchemaError{Message: fmt.Sprintf("схема функции %q не сериализуется: %v", fn.Name, err)}}
	}

	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: chatMessages,
		Stream:   &stream,
		Tools:    api.Tools{tool},
	}

	var final api.ChatResponse
	start := time.Now()
	err = c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		final = resp
		return nil
	})
	res := Result{LatencyMS: time.Since(start).Milliseconds()}

	if err != nil {
		res.Err = &TransportError{Err: err}
		observeCall(c.ModelName(), fn.Name, "error", res)
		return res
	}

	res.PromptTokens = final.Metrics.PromptEvalCount
	res.CompletionTokens = final.Metrics.EvalCount

	if len(final.Message.ToolCalls) == 0 {
		res.Err = &SchemaError{Message: fmt.Sprintf("модель не вызвала инструмент %q", fn.Name)}
		observeCall(c.ModelName(), fn.Name, "no_function_call", res)
		return res
	}

	rawArgs, err := json.Marshal(final.Message.ToolCalls[0].Function.Arguments)
	if err != nil {
		res.Err = &SchemaError{Message: fmt.Sprintf("аргументы инструмента %q не сериализуются: %v", fn.Name, err)}
		observeCall(c.ModelName(), fn.Name, "no_function_call", res)
		return res
	}

	res.OK = true
	res.Raw = string(rawArgs)
	observeCall(c.ModelName(), fn.Name, "success", res)

	c.logger.Debug("вызов инструмента завершен",
		zap.String("function", fn.Name),
		zap.Int64("latencyMs", res.LatencyMS),
		zap.Int("promptTokens", res.PromptTokens),
		zap.Int("completionTokens", res.CompletionTokens))

	return res
}

// toOllamaTool переводит нейтральную схему функции в инструмент ollama через
// JSON, чтобы не дублировать вручную анонимную структуру параметров api.
func toOllamaTool(fn Function) (api.Tool, error) {
	var tool api.Tool
	tool.Type = "function"
	tool.Function.Name = fn.Name
	tool.Function.Description = fn.Description

	raw, err := json.Marshal(fn.Parameters)
	if err != nil {
		return tool, err
	}
	if err := json.Unmarshal(raw, &tool.Function.Parameters); err != nil {
		return tool, err
	}
	return tool, nil
}
