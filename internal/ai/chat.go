package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared"

	"github.com/zetalabs/convo/internal/domain"
)

const maxToolCalls = 3

// ToolHandlers backs the catalog tools the model may call while composing
// a consultation reply. A nil handler reports the tool as unavailable.
type ToolHandlers struct {
	SearchProducts    func(ctx context.Context, query string) (any, error)
	GetProductDetails func(ctx context.Context, sku string) (any, error)
	RecommendProducts func(ctx context.Context) (any, error)
}

func catalogTools() []openaigo.ChatCompletionToolUnionParam {
	return []openaigo.ChatCompletionToolUnionParam{
		openaigo.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        "search_products",
			Description: param.NewOpt("Найти товары в каталоге магазина по текстовому запросу."),
			Strict:      param.NewOpt(true),
			Parameters: shared.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": "string", "description": "Поисковый запрос, например 'серый диван'."},
				},
				"required":             []string{"query"},
				"additionalProperties": false,
			},
		}),
		openaigo.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        "get_product_details",
			Description: param.NewOpt("Получить подробности товара по артикулу."),
			Strict:      param.NewOpt(true),
			Parameters: shared.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"sku": map[string]any{"type": "string", "description": "Артикул товара, например ДИВ-КЛА-001."},
				},
				"required":             []string{"sku"},
				"additionalProperties": false,
			},
		}),
		openaigo.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        "recommend_products",
			Description: param.NewOpt("Порекомендовать товары на основе ранее просмотренных."),
			Strict:      param.NewOpt(true),
			Parameters: shared.FunctionParameters{
				"type":                 "object",
				"properties":           map[string]any{},
				"additionalProperties": false,
			},
		}),
	}
}

// HistoryMessages converts stored conversation turns into chat messages,
// oldest first.
func HistoryMessages(turns []domain.Turn) []openaigo.ChatCompletionMessageParamUnion {
	msgs := make([]openaigo.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case domain.RoleAssistant:
			msgs = append(msgs, openaigo.AssistantMessage(t.Text))
		default:
			msgs = append(msgs, openaigo.UserMessage(t.Text))
		}
	}
	return msgs
}

// Complete runs the chat completion with catalog tools, resolving tool
// calls via handlers until the model produces a plain reply.
func (c *Client) Complete(
	ctx context.Context,
	systemPrompt string,
	history []openaigo.ChatCompletionMessageParamUnion,
	userText string,
	handlers ToolHandlers,
) (string, error) {
	messages := make([]openaigo.ChatCompletionMessageParamUnion, 0, 2+len(history)+maxToolCalls*4)
	messages = append(messages, openaigo.SystemMessage(strings.TrimSpace(systemPrompt)))
	messages = append(messages, history...)
	messages = append(messages, openaigo.UserMessage(strings.TrimSpace(userText)))

	tools := catalogTools()

	for i := 0; i <= maxToolCalls; i++ {
		resp, err := c.api.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
			Model:    openaigo.ChatModel(c.model),
			Messages: messages,
			Tools:    tools,
		})
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("chat completion: empty choices")
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return strings.TrimSpace(msg.Content), nil
		}

		messages = append(messages, msg.ToParam())
		for _, tc := range msg.ToolCalls {
			if strings.TrimSpace(tc.Type) != "function" {
				b, _ := json.Marshal(tc)
				messages = append(messages, openaigo.ToolMessage(string(b), tc.ID))
				continue
			}
			call := tc.AsFunction()
			payload := c.dispatchTool(ctx, handlers, call.Function.Name, call.Function.Arguments)
			b, _ := json.Marshal(payload)
			messages = append(messages, openaigo.ToolMessage(string(b), tc.ID))
		}
	}

	return "", fmt.Errorf("chat completion: tool loop exceeded %d calls", maxToolCalls)
}

func (c *Client) dispatchTool(ctx context.Context, handlers ToolHandlers, name, rawArgs string) any {
	var args map[string]any
	_ = json.Unmarshal([]byte(rawArgs), &args)
	if args == nil {
		args = map[string]any{}
	}

	var payload any
	var err error
	switch strings.TrimSpace(name) {
	case "search_products":
		if handlers.SearchProducts == nil {
			return map[string]any{"error": "tool handler not configured"}
		}
		query, _ := args["query"].(string)
		payload, err = handlers.SearchProducts(ctx, query)
	case "get_product_details":
		if handlers.GetProductDetails == nil {
			return map[string]any{"error": "tool handler not configured"}
		}
		sku, _ := args["sku"].(string)
		payload, err = handlers.GetProductDetails(ctx, sku)
	case "recommend_products":
		if handlers.RecommendProducts == nil {
			return map[string]any{"error": "tool handler not configured"}
		}
		payload, err = handlers.RecommendProducts(ctx)
	default:
		return map[string]any{"error": "unknown tool: " + name}
	}

	if err != nil {
		slog.Warn("tool call failed", "tool", name, "error", err)
		return map[string]any{"error": err.Error()}
	}
	return payload
}
