package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"ipo_valuation/pkg/core/instrument"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ParseAssumptions decodes model output into validated assumptions.
// Order of attempts:
// 1. Standard JSON parse
// 2. JSON repair (unquoted keys, single quotes, trailing commas, unclosed objects)
// 3. Hjson parse (most lenient)
//
// A decode that succeeds but fails instrument.Normalize returns the
// *instrument.ValuationError unchanged so callers can name the field.
func ParseAssumptions(raw string) (*instrument.IPOAssumptions, error) {
	body := stripFences(raw)
	if body == "" {
		return nil, fmt.Errorf("EXTRACT_EMPTY: model returned no content")
	}

	var a instrument.IPOAssumptions
	if err := smartParse(body, &a); err != nil {
		return nil, err
	}

	norm, err := instrument.Normalize(a)
	if err != nil {
		return nil, err
	}
	return &norm, nil
}

func smartParse(input string, out *instrument.IPOAssumptions) error {
	// Try 1: Standard JSON
	strictErr := json.Unmarshal([]byte(input), out)
	if strictErr == nil {
		return nil
	}

	// Try 2: JSON Repair
	if repaired, err := jsonrepair.RepairJSON(input); err == nil {
		*out = instrument.IPOAssumptions{}
		if err := json.Unmarshal([]byte(repaired), out); err == nil {
			return nil
		}
	}

	// Try 3: Hjson, re-encoded as JSON so the typed decoders still run
	var generic interface{}
	if err := hjson.Unmarshal([]byte(input), &generic); err == nil {
		if b, err := json.Marshal(generic); err == nil {
			*out = instrument.IPOAssumptions{}
			if err := json.Unmarshal(b, out); err == nil {
				return nil
			}
		}
	}

	return fmt.Errorf("SMART_PARSE_FAILED: all parsing strategies failed: %w", strictErr)
}

// stripFences removes an outer markdown code block (```json ... ```) and any
// chatter around the outermost JSON object
func stripFences(input string) string {
	cleaned := strings.TrimSpace(input)

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		if nl := strings.IndexByte(cleaned, '\n'); nl >= 0 && !strings.ContainsAny(cleaned[:nl], "{[") {
			// Drop the language tag line
			cleaned = cleaned[nl+1:]
		}
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	start := strings.IndexByte(cleaned, '{')
	end := strings.LastIndexByte(cleaned, '}')
	if start > 0 && end > start {
		cleaned = cleaned[start : end+1]
	}
	return cleaned
}
