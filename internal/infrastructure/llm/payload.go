// Package llm adapts chat-completion models to the agent boundary and
// normalizes the assorted shapes agents reply with.
package llm

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// DefaultResultKeys are probed in order when picking the meaningful part of
// an agent reply.
var DefaultResultKeys = []string{
	"generated_content",
	"social_media_report",
	"curated_content",
	"final_content",
	"blog_post",
	"news_summaries",
	"gathered_posts",
	"gathered_news",
	"analysis",
	"output",
	"result",
	"response",
}

type stateHolder interface{ State() map[string]any }

type dictHolder interface{ Dict() map[string]any }

// NormalizePayload folds an agent reply into a single mapping. Mappings are
// narrowed to the first known result key they contain; text is parsed as JSON
// when possible (fenced code blocks included) and otherwise wrapped as
// {"output": text}; sequences yield their final value.
func NormalizePayload(payload any, resultKeys []string) map[string]any {
	if len(resultKeys) == 0 {
		resultKeys = DefaultResultKeys
	}

	switch v := payload.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		for _, key := range resultKeys {
			if value, ok := v[key]; ok {
				return map[string]any{key: value}
			}
		}
		return v
	case string:
		if parsed, ok := parseJSONObject(v); ok {
			return NormalizePayload(parsed, resultKeys)
		}
		if strings.TrimSpace(v) == "" {
			return map[string]any{}
		}
		return map[string]any{"output": v}
	case []byte:
		return NormalizePayload(string(v), resultKeys)
	case stateHolder:
		return NormalizePayload(v.State(), resultKeys)
	case dictHolder:
		return NormalizePayload(v.Dict(), resultKeys)
	case []any:
		if len(v) == 0 {
			return map[string]any{}
		}
		return NormalizePayload(v[len(v)-1], resultKeys)
	}

	if rv := reflect.ValueOf(payload); rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		converted := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			converted[iter.Key().String()] = iter.Value().Interface()
		}
		return NormalizePayload(converted, resultKeys)
	}

	return map[string]any{"output": fmt.Sprint(payload)}
}

// parseJSONObject extracts a JSON object from text, tolerating code fences
// and prose around the object.
func parseJSONObject(text string) (map[string]any, bool) {
	candidate := strings.TrimSpace(stripFences(text))
	if candidate == "" {
		return nil, false
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
		return parsed, true
	}

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	if err := json.Unmarshal([]byte(candidate[start:end+1]), &parsed); err == nil {
		return parsed, true
	}
	return nil, false
}

func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if newline := strings.IndexByte(trimmed, '\n'); newline >= 0 {
		trimmed = trimmed[newline+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
}
