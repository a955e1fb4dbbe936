package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	openaigo "github.com/openai/openai-go/v3"
)

const visionPrompt = "Опишите этот товар мебели КРАТКО (1-2 предложения):\n" +
	"- Тип товара (стул, стол, диван и т.д.)\n" +
	"- Цвет и материал\n" +
	"- Стиль (современный, классический и т.д.)\n" +
	"- Ключевые особенности\n\n" +
	"Если это НЕ мебель - скажите что за товар."

// DescribeImage asks the vision model for a short textual description of
// the product photo, usable as a catalog search query.
func (c *Client) DescribeImage(ctx context.Context, image []byte, mime string) (string, error) {
	if mime == "" {
		mime = "image/jpeg"
	}
	dataURL := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := c.api.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(c.visionModel),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.UserMessage([]openaigo.ChatCompletionContentPartUnionParam{
				openaigo.TextContentPart(visionPrompt),
				openaigo.ImageContentPart(openaigo.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL,
				}),
			}),
		},
		MaxTokens: openaigo.Int(200),
	})
	if err != nil {
		return "", fmt.Errorf("vision completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision completion: empty choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
