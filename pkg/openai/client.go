package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/korjavin/ispirami/pkg/logger"
)

const (
	textTimeout  = 15 * time.Second
	photoTimeout = 30 * time.Second
)

// Client represents an OpenAI API client
type Client struct {
	client *openai.Client
	model  string
	logger *logger.Logger
}

// New creates a new OpenAI client
func New(apiKey, apiBase, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	if apiBase != "" {
		config.BaseURL = apiBase
	}

	client := openai.NewClientWithConfig(config)
	return &Client{
		client: client,
		model:  model,
		logger: logger.New("openai"),
	}
}

// ParseIngredientsFromText extracts ingredient names from free-form text,
// such as a shopping list or a message describing the fridge.
func (c *Client) ParseIngredientsFromText(ctx context.Context, text string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, textTimeout)
	defer cancel()

	prompt := fmt.Sprintf(`
You are a cooking assistant. Extract all food ingredients from the following text.
Keep every name in the language it is written in, lower-case, without quantities.
Return only a JSON array of ingredient names, no other text.
For example: ["uova", "latte", "pomodori", "petto di pollo"]

Text: %s
`, text)

	c.logger.Info("Parsing ingredients from text")
	c.logger.Debug("Text to parse (first 100 chars): %s", truncateString(text, 100))

	content, err := c.complete(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, err
	}
	return c.decodeIngredients(content)
}

// ExtractIngredientsFromPhoto lists the food visible in a photo of a fridge or pantry
func (c *Client) ExtractIngredientsFromPhoto(ctx context.Context, photoURL string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, photoTimeout)
	defer cancel()

	prompt := `You are a computer vision expert. Look at the image of a fridge or pantry and list all visible food ingredients.
Name them in Italian, lower-case, without quantities.
Return only a JSON array of ingredient names, no other text.
For example: ["uova", "latte", "pomodori", "petto di pollo"]
`

	c.logger.Info("Extracting ingredients from photo")
	c.logger.Debug("Photo URL (truncated): %s", truncateString(photoURL, 50))

	content, err := c.complete(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: prompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "What food ingredients do you see in this image? List all of them in a JSON array.",
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: photoURL,
						},
					},
				},
			},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, err
	}
	return c.decodeIngredients(content)
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Error("OpenAI API error: %v", err)
		return "", errors.Wrap(err, "OpenAI API error")
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI API")
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug("OpenAI response (first 100 chars): %s", truncateString(content, 100))
	return content, nil
}

// decodeIngredients reads the JSON array answer, falling back to a lenient split
func (c *Client) decodeIngredients(content string) ([]string, error) {
	// Clean up the response - sometimes the model returns markdown code blocks
	content = cleanJSONResponse(content)

	var ingredients []string
	if err := json.Unmarshal([]byte(content), &ingredients); err != nil {
		c.logger.Error("Failed to parse response: %v, Content: %s", err, content)

		extracted := extractIngredientsFromText(content)
		if len(extracted) > 0 {
			c.logger.Info("Extracted %d ingredients using fallback method", len(extracted))
			return extracted, nil
		}
		return nil, errors.Wrap(err, "failed to parse OpenAI response")
	}

	c.logger.Info("Successfully extracted %d ingredients", len(ingredients))
	return ingredients, nil
}

// Helper functions

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// cleanJSONResponse strips the ```json fences the model sometimes wraps its answer in
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// the first line may carry a language tag
	if firstLineEnd := strings.Index(s, "\n"); firstLineEnd != -1 {
		s = s[firstLineEnd+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extractIngredientsFromText splits a malformed answer on list punctuation.
// Numbers and JSON literals are dropped.
func extractIngredientsFromText(s string) []string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n' || r == '"' || r == '[' || r == ']' || r == '\t'
	})

	var ingredients []string
	for _, word := range words {
		word = strings.TrimSpace(word)
		if len(word) <= 1 {
			continue
		}
		if word == "null" || word == "true" || word == "false" {
			continue
		}
		if word[0] >= '0' && word[0] <= '9' {
			continue
		}
		ingredients = append(ingredients, word)
	}
	return ingredients
}
