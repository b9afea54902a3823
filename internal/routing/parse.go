package routing

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoJSON is returned when none of the extraction strategies yields a
// parseable JSON object. Callers recover by falling back to
// DefaultDecision rather than surfacing the failure.
var ErrNoJSON = errors.New("routing: no JSON object found in response")

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*?\\})\\s*\\n?```")

// ExtractJSON pulls one JSON object out of raw classifier text. Strategies
// in order, first success wins:
//
//  1. parse the whole trimmed text
//  2. parse the contents of a fenced code block
//  3. balanced-brace scan from the first '{'
//
// The brace scan is structural only: it does not track string literals, so a
// brace inside a quoted value can mis-close the match. That matches the
// reference behavior and is accepted as a known limitation.
func ExtractJSON(raw string) (json.RawMessage, error) {
	text := strings.TrimSpace(raw)

	if json.Valid([]byte(text)) && strings.HasPrefix(text, "{") {
		return json.RawMessage(text), nil
	}

	if m := fenceRe.FindStringSubmatch(text); m != nil {
		if json.Valid([]byte(m[1])) {
			return json.RawMessage(m[1]), nil
		}
	}

	if start := strings.Index(text, "{"); start >= 0 {
		depth := 0
		for i := start; i < len(text); i++ {
			switch text[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					cand := text[start : i+1]
					if json.Valid([]byte(cand)) {
						return json.RawMessage(cand), nil
					}
					return nil, fmt.Errorf("%w: %.80s", ErrNoJSON, text)
				}
			}
		}
	}

	return nil, fmt.Errorf("%w: %.80s", ErrNoJSON, text)
}

// rawDecision is the loose shape the classifier emits. Filter values arrive
// as arbitrary JSON and frequently as the literal strings "null" or "none";
// normalization to true unset values happens here, at the parse boundary.
type rawDecision struct {
	Tool    string                     `json:"tool"`
	Filters map[string]json.RawMessage `json:"filters"`
}

// ParseDecision extracts and normalizes a routing decision from raw
// classifier text. The returned decision is not yet validated against the
// tool set or the controlled vocabulary; see Router.Resolve.
func ParseDecision(raw string) (Decision, error) {
	obj, err := ExtractJSON(raw)
	if err != nil {
		return Decision{}, err
	}
	var rd rawDecision
	if err := json.Unmarshal(obj, &rd); err != nil {
		return Decision{}, fmt.Errorf("routing: decode decision: %w", err)
	}

	dec := Decision{Tool: Tool(strings.TrimSpace(rd.Tool))}
	f := &dec.Filters
	for key, val := range rd.Filters {
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "metric":
			f.Metric = Metric(cleanString(val))
		case "division":
			f.Division = cleanString(val)
		case "region":
			f.Region = cleanString(val)
		case "category":
			f.Category = cleanString(val)
		case "brand":
			f.Brand = cleanString(val)
		case "group_by":
			f.GroupBy = GroupBy(strings.ToLower(cleanString(val)))
		case "group_value":
			f.GroupValue = cleanString(val)
		case "time_grain":
			f.TimeGrain = TimeGrain(strings.ToLower(cleanString(val)))
		case "top_n":
			f.TopN = cleanInt(val)
		case "view":
			f.View = View(strings.ToLower(cleanString(val)))
		case "year":
			f.Year = cleanInt(val)
		}
	}
	if f.Metric == "" {
		f.Metric = MetricSales
	}
	return dec, nil
}

// cleanString decodes a JSON value into a string, mapping JSON null and the
// sentinel strings "null", "none" and "" to unset.
func cleanString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		// Not a JSON string: tolerate bare numbers by reusing their text.
		var n float64
		if json.Unmarshal(raw, &n) == nil {
			return strings.TrimRight(strings.TrimRight(strconv.FormatFloat(n, 'f', -1, 64), "0"), ".")
		}
		return ""
	}
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "null", "none", "":
		return ""
	}
	return s
}

// cleanInt decodes a JSON number or numeric string, 0 when absent/invalid.
func cleanInt(raw json.RawMessage) int {
	var n float64
	if json.Unmarshal(raw, &n) == nil {
		return int(n)
	}
	s := cleanString(raw)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

// NarrativeResponse is the validated second-pass output: a short insight and
// exactly three follow-up suggestions.
type NarrativeResponse struct {
	Insight     string   `json:"insight"`
	Suggestions []string `json:"suggestions"`
}

// FallbackSuggestions pad or replace missing follow-up questions.
var FallbackSuggestions = []string{
	"Show me the overall sales trend",
	"Which division performs best?",
	"Are there any anomalies in the data?",
}

const paddingSuggestion = "Tell me more about this data"

var markupStripper = strings.NewReplacer(
	"`", "", "*", "", "_", " ", "•", "", "- ", "",
)

// ParseNarrative extracts and validates the insight/suggestions pair from
// raw generation text: a non-empty insight with markup characters stripped,
// and exactly three suggestions (padded or truncated as needed).
func ParseNarrative(raw string) (NarrativeResponse, error) {
	obj, err := ExtractJSON(raw)
	if err != nil {
		return NarrativeResponse{}, err
	}
	var nr NarrativeResponse
	if err := json.Unmarshal(obj, &nr); err != nil {
		return NarrativeResponse{}, fmt.Errorf("routing: decode narrative: %w", err)
	}
	return ValidateNarrative(nr), nil
}

// TrustedNarrative wraps insight text produced locally, such as a data
// digest or a tool's own narrative. Suggestions are padded the same way as
// model output, but the text is kept verbatim: markup stripping exists to
// sanitize model formatting and would corrupt deterministic bullet lists.
func TrustedNarrative(insight string) NarrativeResponse {
	nr := NarrativeResponse{Insight: strings.TrimSpace(insight)}
	if nr.Insight == "" {
		nr.Insight = "Here is the analysis based on the available data."
	}
	nr.Suggestions = append([]string(nil), FallbackSuggestions...)
	return nr
}

// ValidateNarrative enforces the narrative contract on an already-decoded
// response.
func ValidateNarrative(nr NarrativeResponse) NarrativeResponse {
	nr.Insight = strings.TrimSpace(markupStripper.Replace(nr.Insight))
	if nr.Insight == "" {
		nr.Insight = "Here is the analysis based on the available data."
	}
	if len(nr.Suggestions) == 0 {
		nr.Suggestions = append([]string(nil), FallbackSuggestions...)
	}
	for i, s := range nr.Suggestions {
		nr.Suggestions[i] = strings.TrimSpace(s)
	}
	for len(nr.Suggestions) < 3 {
		nr.Suggestions = append(nr.Suggestions, paddingSuggestion)
	}
	nr.Suggestions = nr.Suggestions[:3]
	return nr
}
