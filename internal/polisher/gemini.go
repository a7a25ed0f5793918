package polisher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/sonote/internal/domain"
)

const systemInstruction = "You are a professional text editor who tidies up and polishes transcripts. Always answer in JSON."

const polishPrompt = `Process the following speech transcript.

[Raw transcript]
%s

Tasks:
1. **Polish the text**: remove filler words (such as "um", "uh", "you know"), fix grammar and sentence structure so it reads as written prose, and keep the original meaning. Keep the transcript's language.
2. **Summarize**: describe the core content in 3-5 sentences.
3. **Extract keywords**: list the 5-8 most relevant keywords or phrases.

Return the result strictly in this JSON format and nothing else:
{
  "polishedText": "the full polished text",
  "summary": "the summary",
  "keywords": ["keyword 1", "keyword 2", "keyword 3"]
}`

// generateFunc sends one prompt with one API key and returns the raw text.
type generateFunc func(ctx context.Context, apiKey, model, prompt string) (string, error)

var errEmptyResponse = errors.New("empty response from Gemini")

// Polish asks Gemini for the refined JSON and parses it leniently.
func (g *implGemini) Polish(ctx context.Context, transcript string) (domain.Refined, error) {
	prompt := fmt.Sprintf(polishPrompt, truncateRunes(transcript, MaxTranscriptRunes))

	content, err := g.callGemini(ctx, prompt)
	if err != nil {
		return domain.Refined{}, err
	}

	refined, ok := parseRefined(content)
	if !ok {
		g.logger.Warn(ctx, "Gemini returned non-JSON content, using raw text")
	}
	return refined, nil
}

// callGemini rotates API keys on 429 / quota errors.
func (g *implGemini) callGemini(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for range len(g.apiKeys) {
		idx, key := g.key()

		text, err := g.generate(ctx, key, g.model, prompt)
		if err != nil {
			if isRateLimited(err) {
				g.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
				g.rotateKey(idx)
				lastErr = err
				continue
			}
			return "", fmt.Errorf("LLM Service Error: %w", err)
		}
		return text, nil
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (g *implGemini) key() (int, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentKey, g.apiKeys[g.currentKey]
}

// rotateKey advances past idx unless another run already rotated.
func (g *implGemini) rotateKey(idx int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentKey == idx {
		g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
	}
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func generateWithGenAI(ctx context.Context, apiKey, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.3),
		MaxOutputTokens:   4096,
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return "", err
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text string
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
		return text, nil
	}

	return "", errEmptyResponse
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
