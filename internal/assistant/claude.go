package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"

	"OrderDeskPlatform/internal/domain"
)

const upstreamName = "assistant"

// ErrEmptyReply модель ответила без текста
var ErrEmptyReply = errors.New("assistant returned an empty reply")

// Generator часть llms.Model, которой пользуется шлюз
type Generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Observer получает длительность и результат каждого вызова
type Observer interface {
	ObserveUpstream(upstream string, started time.Time, err error)
}

// Config параметры модели и контакты поддержки для системной подсказки
type Config struct {
	APIKey       string
	Model        string
	MaxTokens    int
	Temperature  float64
	TopP         float64
	Timeout      time.Duration
	SupportPhone string
	SupportEmail string
	SupportHours string
}

// Gateway вызывает LLM с системной подсказкой, контекстом заказов и историей
type Gateway struct {
	llm      Generator
	config   Config
	prompt   string
	observer Observer
}

// NewClaude создает шлюз к Anthropic Messages API
func NewClaude(cfg Config, observer Observer) (*Gateway, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("assistant api key is required")
	}

	llm, err := anthropic.New(
		anthropic.WithToken(cfg.APIKey),
		anthropic.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("create anthropic client: %w", err)
	}

	return NewGateway(llm, cfg, observer), nil
}

// NewGateway создает шлюз поверх произвольной модели
func NewGateway(llm Generator, cfg Config, observer Observer) *Gateway {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Gateway{
		llm:      llm,
		config:   cfg,
		prompt:   SystemPrompt(cfg.SupportPhone, cfg.SupportEmail, cfg.SupportHours),
		observer: observer,
	}
}

// SystemPrompt правила поведения ассистента
func SystemPrompt(phone, email, hours string) string {
	lines := []string{
		"You are a helpful customer service agent for an order management system.",
		"Refer to an order's status only through the 'display_status' field. Never show raw ERP status values.",
		"IMPORTANT: Only provide information that is present in the 'Order Context'.",
		"Do not make up or infer anything that is not there.",
		"If several orders match, ask which one the user means.",
		"If no order is found, be helpful and ask the user for a specific order number.",
		"Always use the data that is available in the context to fully answer the request.",
		"Only when a requested detail is completely missing from the order context, politely say you do not have it and suggest contacting Customer Service.",
		"In that case use exactly this contact info:",
		"Phone: " + phone,
		"Email: " + email,
		"Hours: " + hours,
		"Do NOT show the Customer Service contact if you already answered the question.",
		"Encourage a multi-turn conversation to fully resolve the user's questions.",
		"Keep your responses clear and friendly.",
		"Format your reply in Markdown, using paragraphs or bullet points as appropriate.",
	}
	return strings.Join(lines, "\n")
}

// Reply отправляет сообщение клиента модели и возвращает текст ответа
func (g *Gateway) Reply(ctx context.Context, message string, orderContext interface{}, history []domain.ConversationTurn) (reply string, err error) {
	started := time.Now()
	if g.observer != nil {
		defer func() { g.observer.ObserveUpstream(upstreamName, started, err) }()
	}

	messages, err := g.buildMessages(message, orderContext, history)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	resp, err := g.llm.GenerateContent(ctx, messages,
		llms.WithMaxTokens(g.config.MaxTokens),
		llms.WithTemperature(g.config.Temperature),
		llms.WithTopP(g.config.TopP),
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	texts := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		if choice == nil {
			continue
		}
		if text := strings.TrimSpace(choice.Content); text != "" {
			texts = append(texts, text)
		}
	}

	reply = strings.TrimSpace(strings.Join(texts, "\n"))
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}

func (g *Gateway) buildMessages(message string, orderContext interface{}, history []domain.ConversationTurn) ([]llms.MessageContent, error) {
	contextJSON, err := json.MarshalIndent(orderContext, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode order context: %w", err)
	}

	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem,
		g.prompt+"\n\nOrder Context:\n"+string(contextJSON)))

	for _, turn := range history {
		if !turn.Valid() {
			continue
		}
		messages = append(messages, llms.TextParts(messageType(turn.Role), turn.Content))
	}

	return append(messages, llms.TextParts(llms.ChatMessageTypeHuman, message)), nil
}

func messageType(role domain.Role) llms.ChatMessageType {
	switch role {
	case domain.RoleSystem:
		return llms.ChatMessageTypeSystem
	case domain.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
