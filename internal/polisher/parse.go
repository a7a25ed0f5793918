package polisher

import (
	"encoding/json"
	"strings"

	"github.com/nguyentantai21042004/sonote/internal/domain"
)

// FallbackSummary is used when the model answer is not the expected JSON.
const FallbackSummary = "Summary could not be generated automatically"

type refinedJSON struct {
	PolishedText *string   `json:"polishedText"`
	Summary      *string   `json:"summary"`
	Keywords     *[]string `json:"keywords"`
}

// parseRefined extracts the refined JSON from a model answer, which may be
// wrapped in a markdown code fence. When extraction fails the answer itself
// becomes the polished text and ok is false.
func parseRefined(content string) (domain.Refined, bool) {
	body := strings.TrimSpace(extractFenced(content))

	var raw refinedJSON
	if err := json.Unmarshal([]byte(body), &raw); err == nil &&
		raw.PolishedText != nil && raw.Summary != nil && raw.Keywords != nil {
		return domain.Refined{
			PolishedText: *raw.PolishedText,
			Summary:      *raw.Summary,
			Keywords:     nonNil(*raw.Keywords),
		}, true
	}

	return domain.Refined{
		PolishedText: body,
		Summary:      FallbackSummary,
		Keywords:     []string{},
	}, false
}

// extractFenced returns the body of the first ```json fence, else of the
// first plain ``` fence, else the content unchanged.
func extractFenced(content string) string {
	for _, open := range []string{"```json", "```"} {
		_, rest, found := strings.Cut(content, open)
		if !found {
			continue
		}
		body, _, _ := strings.Cut(rest, "```")
		return body
	}
	return content
}
