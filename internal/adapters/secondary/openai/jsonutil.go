package openai

import "regexp"

// Models wrap JSON in markdown fences or prose often enough that a plain
// json.Unmarshal of the content is unreliable.
var (
	jsonBlockPattern  = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	jsonObjectPattern = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	trailingCommas    = regexp.MustCompile(`,\s*([}\]])`)
)

// extractJSON pulls a JSON object out of model output, preferring a fenced
// code block and falling back to the outermost braces. Trailing commas are
// stripped. Returns "" when no object is found.
func extractJSON(content string) string {
	raw := ""
	if m := jsonBlockPattern.FindStringSubmatch(content); len(m) > 1 {
		raw = m[1]
	} else if m := jsonObjectPattern.FindString(content); m != "" {
		raw = m
	}
	if raw == "" {
		return ""
	}
	return trailingCommas.ReplaceAllString(raw, "$1")
}
