package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
)

// ToolCall is one parsed invocation out of an assistant turn.
type ToolCall struct {
	Tool string
	Args map[string]interface{}
}

// toolCallRegex recognizes the tag-based wire format the tool loop uses
// to request tool invocations: <tool name="...">{"arg":"value"}</tool>.
var toolCallRegex = regexp.MustCompile(`(?s)<tool\s+name="([^"]+)">\s*(\{.*?\})\s*</tool>`)

// ParseToolCalls extracts every <tool name="...">{json}</tool> call out
// of an assistant message. Malformed JSON payloads are skipped rather
// than failing the whole parse.
func ParseToolCalls(content string) []ToolCall {
	matches := toolCallRegex.FindAllStringSubmatch(content, -1)
	var calls []ToolCall
	for _, m := range matches {
		if len(m) < 3 {
			continue
		}
		var args map[string]interface{}
		if err := json.Unmarshal([]byte(m[2]), &args); err != nil {
			continue
		}
		calls = append(calls, ToolCall{Tool: m[1], Args: args})
	}
	return calls
}

// GenerateText performs a single-shot completion with an explicit output
// token budget, independent of the tool loop. This is the LLM
// Collaborator's generateText(prompt, {maxOutputTokens}) operation.
func (c *Client) GenerateText(ctx context.Context, prompt string, maxOutputTokens int) (string, error) {
	req := ChatRequest{
		Model:       c.model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: DefaultModelConfig().Temperature,
		MaxTokens:   maxOutputTokens,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", openRouterURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("HTTP-Referer", "https://github.com/emilwareus/go-research")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error %d", resp.StatusCode)
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from LLM")
	}
	return chatResp.Choices[0].Message.Content, nil
}
