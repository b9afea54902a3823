package session

import (
	"fmt"
	"strings"

	"retailiq/internal/routing"
)

// Memory carries the conversational context for one session. Entities
// accumulate across turns (a later turn never clears an entity, only
// overwrites it), while LastFilters and LastResult are replaced wholesale
// on every successful turn.
type Memory struct {
	Entities    map[string]string `json:"entities"`
	LastFilters map[string]string `json:"last_filters"`
	LastResult  LastResult        `json:"last_result"`
}

// LastResult summarizes the previous turn's outcome for follow-up questions.
type LastResult struct {
	Description string `json:"description,omitempty"`
	TopItem     string `json:"top_item,omitempty"`
}

func NewMemory() *Memory {
	return &Memory{
		Entities:    make(map[string]string),
		LastFilters: make(map[string]string),
	}
}

const maxDescription = 200

// Commit records the outcome of one completed turn. It must only be called
// after the whole pipeline succeeded; a failed turn leaves memory untouched.
func (m *Memory) Commit(tool routing.Tool, f routing.Filters, insight, topItem string) {
	if v := f.Region; v != "" {
		m.Entities["region"] = v
	}
	if v := f.Brand; v != "" {
		m.Entities["brand"] = v
	}
	if v := f.Division; v != "" {
		m.Entities["division"] = v
	}
	if v := f.Category; v != "" {
		m.Entities["category"] = v
	}

	m.LastFilters = map[string]string{"tool": string(tool)}
	for k, v := range filterPairs(f) {
		m.LastFilters[k] = v
	}

	desc := insight
	if len(desc) > maxDescription {
		desc = desc[:maxDescription]
	}
	m.LastResult = LastResult{Description: desc, TopItem: topItem}
}

// Empty reports whether the session has no prior context at all.
func (m *Memory) Empty() bool {
	return len(m.Entities) == 0 && len(m.LastFilters) == 0 &&
		m.LastResult.Description == "" && m.LastResult.TopItem == ""
}

// filterOrder fixes the rendering order of filter keys in prompts.
var filterOrder = []string{
	"metric", "division", "region", "category", "brand",
	"group_by", "group_value", "time_grain", "top_n", "view", "year",
}

func filterPairs(f routing.Filters) map[string]string {
	out := make(map[string]string)
	put := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	put("metric", string(f.Metric))
	put("division", f.Division)
	put("region", f.Region)
	put("category", f.Category)
	put("brand", f.Brand)
	put("group_by", string(f.GroupBy))
	put("group_value", f.GroupValue)
	put("time_grain", string(f.TimeGrain))
	if f.TopN > 0 {
		out["top_n"] = fmt.Sprintf("%d", f.TopN)
	}
	put("view", string(f.View))
	if f.Year > 0 {
		out["year"] = fmt.Sprintf("%d", f.Year)
	}
	return out
}

// PromptBlock renders the memory as the session-context block of the routing
// prompt. Returns "" for an empty memory so the prompt builder can substitute
// its first-question placeholder.
func (m *Memory) PromptBlock() string {
	if m.Empty() {
		return ""
	}
	var parts []string

	if len(m.Entities) > 0 {
		var kv []string
		for _, k := range []string{"region", "brand", "division", "category"} {
			if v := m.Entities[k]; v != "" {
				kv = append(kv, k+"="+v)
			}
		}
		if len(kv) > 0 {
			parts = append(parts, "Current entities: "+strings.Join(kv, ", "))
		}
	}

	if len(m.LastFilters) > 0 {
		tool := m.LastFilters["tool"]
		if tool == "" {
			tool = "unknown"
		}
		parts = append(parts, "Last tool used: "+tool)
		var kv []string
		for _, k := range filterOrder {
			if v := m.LastFilters[k]; v != "" {
				kv = append(kv, k+"="+v)
			}
		}
		if len(kv) > 0 {
			parts = append(parts, "Last filters: "+strings.Join(kv, ", "))
		}
	}

	if m.LastResult.Description != "" {
		parts = append(parts, "Last analysis: "+m.LastResult.Description)
	}
	if m.LastResult.TopItem != "" {
		parts = append(parts, "Top item from last result: "+m.LastResult.TopItem)
	}

	return strings.Join(parts, "\n")
}
