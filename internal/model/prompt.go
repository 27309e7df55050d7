package model

import (
	"encoding/json"
	"regexp"
	"strings"

	"golang.org/x/time/rate"
)

func newLimiter(callsPerMinute int) *rate.Limiter {
	if callsPerMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(float64(callsPerMinute)/60.0), 1)
}

// buildPrompt appends the JSON-encoded context object to the prompt.
// A context that fails to marshal is silently dropped; the prompt
// alone is still useful.
func buildPrompt(prompt string, contextData map[string]any) string {
	if len(contextData) == 0 {
		return prompt
	}
	encoded, err := json.MarshalIndent(contextData, "", "  ")
	if err != nil {
		return prompt
	}
	return prompt + "\n\nContext:\n" + string(encoded)
}

var (
	numberedItem = regexp.MustCompile(`^\d+[.)]`)
	listPrefix   = regexp.MustCompile(`^[-*\s]+|^\d+[.)]\s*`)
	fencedBlock  = regexp.MustCompile("(?s)```(?:[a-zA-Z]+)?\n(.*?)\n```")
)

// ParseRecommendations pulls list items out of free-text model output.
// This is a best-effort lexical pass over bullet and number markers;
// if none are found the whole response is returned verbatim as a
// single recommendation.
func ParseRecommendations(response string) []string {
	var recs []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") || numberedItem.MatchString(line) {
			item := strings.TrimSpace(listPrefix.ReplaceAllString(line, ""))
			if item != "" {
				recs = append(recs, item)
			}
		}
	}
	if len(recs) == 0 {
		return []string{response}
	}
	return recs
}

// ExtractCode pulls source code out of a model response. It prefers a
// fenced code block; failing that, a response that itself looks like
// code is returned raw. Returns "" when no code could be extracted.
func ExtractCode(response string) string {
	if m := fencedBlock.FindStringSubmatch(response); m != nil {
		return m[1]
	}
	if strings.Contains(response, "def ") || strings.Contains(response, "import ") {
		return response
	}
	return ""
}
