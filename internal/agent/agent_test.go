package agent

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailiq/internal/dataset"
	"retailiq/internal/llmclient"
	"retailiq/internal/routing"
	"retailiq/internal/session"
)

// fakeLLM replays a scripted queue of responses and records every call.
type fakeLLM struct {
	mu      sync.Mutex
	scripts []fakeReply
	calls   []fakeCall
}

type fakeReply struct {
	text string
	err  error
}

type fakeCall struct {
	system string
	user   string
	opts   llmclient.Options
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) Chat(_ context.Context, system, user string, opts llmclient.Options) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{system: system, user: user, opts: opts})
	if len(f.scripts) == 0 {
		return "", errors.New("script exhausted")
	}
	r := f.scripts[0]
	f.scripts = f.scripts[1:]
	return r.text, r.err
}

func (f *fakeLLM) Verify(context.Context) (string, error) { return "fake", nil }
func (f *fakeLLM) Close() error                           { return nil }

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func row(r dataset.Row) dataset.Row {
	r.Sales = r.Price * r.Units
	r.COGS = r.Cost * r.Units
	r.Margin = r.Sales - r.COGS
	if r.Sales != 0 {
		r.MarginRate = r.Margin / r.Sales
	}
	return r
}

func testDataset() *dataset.Dataset {
	return &dataset.Dataset{Rows: []dataset.Row{
		row(dataset.Row{Year: 2023, Month: 1, Region: "East", Division: "Apparel", Category: "Footwear", Brand: "Acme", Product: "Runner", Price: 1000, Units: 1, Cost: 500}),
		row(dataset.Row{Year: 2024, Month: 1, Region: "East", Division: "Apparel", Category: "Footwear", Brand: "Acme", Product: "Runner", Price: 1200, Units: 1, Cost: 600}),
		row(dataset.Row{Year: 2023, Month: 1, Region: "West", Division: "Home", Category: "Furniture", Brand: "Zenith", Product: "Chair", Price: 2000, Units: 1, Cost: 1000}),
		row(dataset.Row{Year: 2024, Month: 1, Region: "West", Division: "Home", Category: "Furniture", Brand: "Zenith", Product: "Chair", Price: 2100, Units: 1, Cost: 1050}),
	}}
}

func newTestAgent(t *testing.T, llm llmclient.Client) *Agent {
	t.Helper()
	return New(testDataset(), llm, log.New(io.Discard, "", 0))
}

const routingYoY = `{"tool":"yoy_comparison","filters":{"metric":"sales","group_by":"division"}}`

func TestAskTwoPassFlow(t *testing.T) {
	llm := &fakeLLM{scripts: []fakeReply{
		{text: routingYoY},
		{text: `{"insight":"Apparel grew fastest.","suggestions":["One","Two","Three"]}`},
	}}
	ag := newTestAgent(t, llm)
	sess := session.NewStore().Create()

	ans, err := ag.Ask(context.Background(), sess, "How did each division perform?")
	require.NoError(t, err)

	assert.Equal(t, routing.ToolYoYComparison, ans.Tool)
	assert.Equal(t, "Apparel grew fastest.", ans.Insight)
	assert.Equal(t, []string{"One", "Two", "Three"}, ans.Suggestions)
	assert.NotNil(t, ans.Table)
	assert.NotEmpty(t, ans.TableText)

	// Pass 1 runs cool, pass 2 warmer.
	require.Equal(t, 2, llm.callCount())
	assert.InDelta(t, 0.1, llm.calls[0].opts.Temperature, 1e-9)
	assert.InDelta(t, 0.3, llm.calls[1].opts.Temperature, 1e-9)
	assert.Equal(t, "How did each division perform?", llm.calls[0].user)

	// Memory committed and the turn transcribed.
	assert.False(t, sess.Memory.Empty())
	assert.Equal(t, "yoy_comparison", sess.Memory.LastFilters["tool"])
	assert.Len(t, sess.Messages, 2)
}

func TestAskOutOfScopeShortCircuits(t *testing.T) {
	llm := &fakeLLM{scripts: []fakeReply{{text: routingYoY}}}
	ag := newTestAgent(t, llm)
	sess := session.NewStore().Create()

	ans, err := ag.Ask(context.Background(), sess, "What is our customer retention?")
	require.NoError(t, err)

	assert.Equal(t, routing.ToolOutOfScope, ans.Tool)
	assert.Contains(t, ans.Insight, "Customer-level data")
	assert.Equal(t, routing.FallbackSuggestions, ans.Suggestions)
	assert.Nil(t, ans.Table)

	// No second pass and no memory commit.
	assert.Equal(t, 1, llm.callCount())
	assert.True(t, sess.Memory.Empty())
	assert.Len(t, sess.Messages, 2)
}

func TestAskNarrativePassFailureFallsBackToDigest(t *testing.T) {
	llm := &fakeLLM{scripts: []fakeReply{
		{text: routingYoY},
		{err: errors.New("backend gone")},
	}}
	ag := newTestAgent(t, llm)
	sess := session.NewStore().Create()

	ans, err := ag.Ask(context.Background(), sess, "How did each division perform?")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ans.Insight, "Here are the key findings from the analysis:\n\n"))
	assert.Contains(t, ans.Insight, "Strongest growth:")
	// The digest passes through verbatim; its bullet markers must survive.
	assert.Contains(t, ans.Insight, "  - Apparel: 2023=$1,000, 2024=$1,200, change=+20.0%")
	assert.Equal(t, routing.FallbackSuggestions, ans.Suggestions)
	// A degraded turn still commits memory; the data itself was fine.
	assert.False(t, sess.Memory.Empty())
}

func TestAskRoutingFailureUsesDefaultDecision(t *testing.T) {
	llm := &fakeLLM{scripts: []fakeReply{
		{err: errors.New("backend gone")},
		{text: `{"insight":"Fallback routing still answered.","suggestions":["A","B","C"]}`},
	}}
	ag := newTestAgent(t, llm)
	sess := session.NewStore().Create()

	ans, err := ag.Ask(context.Background(), sess, "Tell me something interesting")
	require.NoError(t, err)
	assert.Equal(t, routing.ToolYoYComparison, ans.Tool)
	assert.Equal(t, "Fallback routing still answered.", ans.Insight)
}

func TestAskPrecomputedNarrativeSkipsSecondPass(t *testing.T) {
	llm := &fakeLLM{scripts: []fakeReply{
		{text: `{"tool":"yoy_comparison","filters":{"metric":"sales","group_by":"region"}}`},
	}}
	ag := newTestAgent(t, llm)
	sess := session.NewStore().Create()

	ans, err := ag.Ask(context.Background(), sess, "Show me performance by region")
	require.NoError(t, err)

	assert.Contains(t, ans.Insight, "fastest growing region")
	require.Len(t, ans.Suggestions, 3)
	assert.Equal(t, 1, llm.callCount())
}

func TestAskDecisionCacheSkipsClassifier(t *testing.T) {
	llm := &fakeLLM{scripts: []fakeReply{{text: routingYoY}}}
	ag := newTestAgent(t, llm)
	sess := session.NewStore().Create()

	// Out-of-scope turns leave memory untouched, so the cache key repeats.
	q := "What is our customer retention?"
	_, err := ag.Ask(context.Background(), sess, q)
	require.NoError(t, err)
	require.Equal(t, 1, llm.callCount())

	_, err = ag.Ask(context.Background(), sess, q)
	require.NoError(t, err)
	assert.Equal(t, 1, llm.callCount())
}

func TestAskMalformedClassifierOutputDegrades(t *testing.T) {
	llm := &fakeLLM{scripts: []fakeReply{
		{text: "I think you should look at divisions."},
		{text: `{"insight":"Parsed nothing, answered anyway.","suggestions":["A","B","C"]}`},
	}}
	ag := newTestAgent(t, llm)
	sess := session.NewStore().Create()

	ans, err := ag.Ask(context.Background(), sess, "Tell me something interesting")
	require.NoError(t, err)
	assert.Equal(t, routing.ToolYoYComparison, ans.Tool)
}

func TestSummaryExposesDataset(t *testing.T) {
	ag := newTestAgent(t, &fakeLLM{})
	sum := ag.Summary()
	require.NotNil(t, sum)
	assert.Equal(t, []int{2023, 2024}, sum.Years)
	assert.ElementsMatch(t, []string{"Apparel", "Home"}, sum.Divisions)
}
