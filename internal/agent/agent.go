// Package agent wires the two-pass question pipeline: the classifier picks a
// tool, the tool aggregates real data, and a second pass writes the insight
// from the digest of that data. Session memory commits only after the whole
// turn succeeded.
package agent

import (
	"context"
	"log"

	lru "github.com/hashicorp/golang-lru/v2"

	"retailiq/internal/dataset"
	"retailiq/internal/insight"
	"retailiq/internal/llmclient"
	"retailiq/internal/routing"
	"retailiq/internal/session"
	"retailiq/internal/table"
	"retailiq/internal/tools"
)

const (
	routingTemperature = 0.1
	insightTemperature = 0.3
	decisionCacheSize  = 256
)

// Agent answers questions over one loaded dataset. Safe for concurrent use;
// per-session ordering is enforced by the session lock.
type Agent struct {
	ds      *dataset.Dataset
	summary *dataset.Summary
	router  *routing.Router
	llm     llmclient.Client
	log     *log.Logger

	// decisions caches classifier routing by question + memory context, so
	// repeated questions skip the first model call entirely.
	decisions *lru.Cache[string, routing.Decision]
}

// Answer is one completed turn.
type Answer struct {
	Tool        routing.Tool     `json:"tool"`
	Title       string           `json:"title,omitempty"`
	Insight     string           `json:"insight"`
	Suggestions []string         `json:"suggestions"`
	Table       *table.Table     `json:"table,omitempty"`
	TableText   string           `json:"table_text,omitempty"`
	Chart       *tools.ChartSpec `json:"chart,omitempty"`
	Callouts    []string         `json:"callouts,omitempty"`
	Note        string           `json:"note,omitempty"`
	// OverrideTrace surfaces keyword overrides for debugging clients.
	OverrideTrace string `json:"override_trace,omitempty"`
}

func New(ds *dataset.Dataset, llm llmclient.Client, logger *log.Logger) *Agent {
	if logger == nil {
		logger = log.Default()
	}
	summary := dataset.Summarize(ds)
	cache, _ := lru.New[string, routing.Decision](decisionCacheSize)
	return &Agent{
		ds:        ds,
		summary:   summary,
		router:    routing.NewRouter(summary),
		llm:       llm,
		log:       logger,
		decisions: cache,
	}
}

// Summary exposes the dataset projection for sidebar and health endpoints.
func (a *Agent) Summary() *dataset.Summary { return a.summary }

// Ask runs the full pipeline for one question within a session.
func (a *Agent) Ask(ctx context.Context, sess *session.Session, question string) (*Answer, error) {
	sess.Lock()
	defer sess.Unlock()

	sess.Append(session.Message{Role: "user", Content: question})

	dec := a.route(ctx, sess.Memory, question)
	if dec.OverrideTrace != "" {
		a.log.Printf("routing: %s", dec.OverrideTrace)
	}

	if dec.Tool == routing.ToolOutOfScope {
		ans := &Answer{
			Tool:        routing.ToolOutOfScope,
			Insight:     routing.OutOfScopeMessage(question),
			Suggestions: routing.FallbackSuggestions,
		}
		sess.Append(session.Message{Role: "assistant", Content: ans.Insight, Tool: ans.Tool, Suggestions: ans.Suggestions})
		return ans, nil
	}

	res := tools.Run(a.ds, dec)
	digest := insight.Digest(res)

	nr := a.narrate(ctx, res, question, digest)

	sess.Memory.Commit(dec.Tool, dec.Filters, nr.Insight, res.TopItem)

	ans := &Answer{
		Tool:          res.Tool,
		Title:         res.Title,
		Insight:       nr.Insight,
		Suggestions:   nr.Suggestions,
		Table:         res.Table,
		Chart:         res.Chart,
		Callouts:      res.Callouts,
		Note:          res.Note,
		OverrideTrace: dec.OverrideTrace,
	}
	if res.Table != nil && !res.Table.Empty() {
		ans.TableText = res.Table.String()
	}
	sess.Append(session.Message{Role: "assistant", Content: ans.Insight, Tool: ans.Tool, Suggestions: ans.Suggestions})
	return ans, nil
}

// route runs pass 1. Any failure, from an unreachable model to unparseable
// output, degrades to the default decision; the keyword layer still applies.
func (a *Agent) route(ctx context.Context, mem *session.Memory, question string) routing.Decision {
	memoryBlock := mem.PromptBlock()
	cacheKey := question + "\x00" + memoryBlock

	if dec, ok := a.decisions.Get(cacheKey); ok {
		return a.router.Resolve(question, dec)
	}

	dec := routing.DefaultDecision()
	prompt := routing.BuildRoutingPrompt(a.summary, memoryBlock)
	raw, err := a.llm.Chat(ctx, prompt, question, llmclient.Options{Temperature: routingTemperature})
	if err != nil {
		a.log.Printf("routing: classifier call failed: %v", err)
	} else if parsed, perr := routing.ParseDecision(raw); perr != nil {
		a.log.Printf("routing: unparseable classifier output: %v", perr)
	} else {
		dec = parsed
		a.decisions.Add(cacheKey, parsed)
	}

	return a.router.Resolve(question, dec)
}

// narrate runs pass 2, unless the tool already produced an authoritative
// narrative. A failed pass 2 falls back to the raw digest.
func (a *Agent) narrate(ctx context.Context, res *tools.Result, question, digest string) routing.NarrativeResponse {
	if res.Narrative != "" {
		return routing.TrustedNarrative(res.Narrative)
	}

	prompt := routing.BuildInsightPrompt(res.Tool, digest)
	raw, err := a.llm.Chat(ctx, prompt, question, llmclient.Options{Temperature: insightTemperature})
	if err == nil {
		if nr, perr := routing.ParseNarrative(raw); perr == nil {
			return routing.ValidateNarrative(nr)
		}
	} else {
		a.log.Printf("insight: generation call failed: %v", err)
	}

	return routing.TrustedNarrative("Here are the key findings from the analysis:\n\n" + digest)
}
