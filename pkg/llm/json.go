package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/kaptinlin/jsonrepair"
)

// ExtractJSONFromResponse extracts JSON from model output that may be
// wrapped in markdown code fences or surrounding prose.
func ExtractJSONFromResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.Contains(response, "```json") {
		start := strings.Index(response, "```json")
		end := strings.Index(response[start+7:], "```")
		if end != -1 {
			return strings.TrimSpace(response[start+7 : start+7+end])
		}
	}

	if strings.HasPrefix(response, "```") {
		lines := strings.Split(response, "\n")
		if len(lines) > 2 {
			return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
		}
	}

	// Fall back to the outermost JSON value boundaries, object or
	// array, whichever opens first.
	objStart := strings.Index(response, "{")
	arrStart := strings.Index(response, "[")
	if arrStart != -1 && (objStart == -1 || arrStart < objStart) {
		if s := sliceBetween(response, "[", "]"); s != "" {
			return s
		}
	}
	if s := sliceBetween(response, "{", "}"); s != "" {
		return s
	}
	if s := sliceBetween(response, "[", "]"); s != "" {
		return s
	}

	return response
}

func sliceBetween(s, open, close string) string {
	start := strings.Index(s, open)
	end := strings.LastIndex(s, close)
	if start != -1 && end != -1 && end > start {
		return s[start : end+1]
	}
	return ""
}

// UnmarshalTolerant decodes model-produced JSON into v, running the
// payload through jsonrepair when a strict decode fails. Models
// routinely emit trailing commas, single quotes, or unquoted keys.
func UnmarshalTolerant(payload string, v any) error {
	payload = ExtractJSONFromResponse(payload)
	if err := json.Unmarshal([]byte(payload), v); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(payload)
	if err != nil {
		return fmt.Errorf("repair response JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("parse repaired response JSON: %w", err)
	}
	return nil
}
