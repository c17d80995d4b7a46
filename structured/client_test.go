package structured

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/tripagent/internal/llmtest"
	"github.com/tbxark/tripagent/progress"
)

type recorder struct {
	mu     sync.Mutex
	status []string
}

func (r *recorder) Report(agent, status string) {
	r.mu.Lock()
	r.status = append(r.status, agent+": "+status)
	r.mu.Unlock()
}

func (r *recorder) attempts() []string {
	var out []string
	for _, s := range r.status {
		if strings.Contains(s, "attempt ") {
			out = append(out, s)
		}
	}
	return out
}

func citySchema() *Schema {
	return NewSchema("city", "A city",
		&Field{Name: "name", Kind: String, Required: true},
		&Field{Name: "population", Kind: Integer},
		&Field{Name: "tags", Kind: List},
	)
}

type city struct {
	Name       string   `json:"name"`
	Population int      `json:"population"`
	Tags       []string `json:"tags"`
}

func TestGenerateAlwaysFailingReturnsFallback(t *testing.T) {
	m := llmtest.Failing()
	rec := &recorder{}
	c := NewClient(m, WithReporter(rec))

	want := map[string]any{"name": "fallback"}
	got := c.Generate(context.Background(), &Request{
		Agent:    "intent",
		Prompt:   "where?",
		Schema:   citySchema(),
		Retries:  3,
		Fallback: func() any { return want },
	})
	require.Equal(t, want, got)
	require.Equal(t, 3, m.Calls())
	require.Equal(t, []string{
		"intent: attempt 1/3 failed",
		"intent: attempt 2/3 failed",
		"intent: attempt 3/3 failed",
	}, rec.attempts())
	require.Equal(t, "intent: fallback", rec.status[len(rec.status)-1])
}

func TestGenerateRecoversOnThirdAttempt(t *testing.T) {
	m := llmtest.New(
		llmtest.Reply{Args: `{"name": "Qing`},
		llmtest.Reply{Args: `not json at all`},
		llmtest.Reply{Args: `{"name": "Qingdao", "population": 10000000, "tags": ["coast"]}`},
	)
	c := NewClient(m)
	got := Invoke(context.Background(), c, Request{Prompt: "city?", Schema: citySchema(), Retries: 3},
		func() city { return city{Name: "fallback"} })
	require.Equal(t, city{Name: "Qingdao", Population: 10000000, Tags: []string{"coast"}}, got)
	require.Equal(t, 3, m.Calls())
	require.Equal(t, 3, m.ToolCalls())
}

func TestGenerateSchemaViolationIsRetried(t *testing.T) {
	m := llmtest.New(
		llmtest.Reply{Args: `{"population": 3}`},
		llmtest.Reply{Args: `{"name": 42}`},
		llmtest.Reply{Args: `{"name": "Xi'an"}`},
	)
	c := NewClient(m)
	got := c.Generate(context.Background(), &Request{Prompt: "city?", Schema: citySchema()})
	require.Equal(t, map[string]any{"name": "Xi'an", "population": float64(0), "tags": []any{}}, got)
	require.Equal(t, DefaultRetries, m.Calls())
}

func TestGenerateDefaultsWithoutFallback(t *testing.T) {
	c := NewClient(llmtest.Failing(), WithRetries(2))
	got := c.Generate(context.Background(), &Request{Prompt: "city?", Schema: citySchema()})
	require.Equal(t, citySchema().Defaults(), got)
}

func TestGeneratePanicCountsAsFailure(t *testing.T) {
	m := llmtest.New(llmtest.Reply{Panic: true}, llmtest.Reply{Args: `{"name": "Lhasa"}`})
	c := NewClient(m)
	got := Invoke[city](context.Background(), c, Request{Prompt: "city?", Schema: citySchema()}, nil)
	require.Equal(t, "Lhasa", got.Name)
	require.Equal(t, 2, m.Calls())
}

func TestGenerateFreeTextPath(t *testing.T) {
	m := llmtest.Text(llmtest.Reply{Content: "Sure!\n```json\n{\"name\": \"Dali\"}\n```\nEnjoy."})
	c := NewClient(m)
	got := Invoke[city](context.Background(), c, Request{Prompt: "city?", Schema: citySchema()}, nil)
	require.Equal(t, "Dali", got.Name)
	require.Equal(t, 0, m.Scripted.ToolCalls())
}

func TestGenerateToolModeDisabledUsesText(t *testing.T) {
	m := llmtest.New(llmtest.Reply{Content: `{"name": "Harbin"}`})
	c := NewClient(m, WithToolMode(false))
	got := Invoke[city](context.Background(), c, Request{Prompt: "city?", Schema: citySchema()}, nil)
	require.Equal(t, "Harbin", got.Name)
	require.Equal(t, 0, m.ToolCalls())
}

func TestGenerateWithoutSchema(t *testing.T) {
	c := NewClient(llmtest.Text(llmtest.Reply{Content: "just words"}))
	require.Equal(t, "just words", c.Generate(context.Background(), &Request{Prompt: "hi"}))

	c = NewClient(llmtest.Text(llmtest.Reply{Content: `here {"ok": true} there`}))
	require.Equal(t, map[string]any{"ok": true}, c.Generate(context.Background(), &Request{Prompt: "hi"}))
}

func TestGenerateStopsWhenContextDone(t *testing.T) {
	m := llmtest.Failing()
	c := NewClient(m, WithReporter(progress.Nop))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := c.Generate(ctx, &Request{Prompt: "x", Fallback: func() any { return "fb" }})
	require.Equal(t, "fb", got)
	require.Equal(t, 1, m.Calls())
}

func TestChainInvoke(t *testing.T) {
	m := llmtest.New(llmtest.Reply{Args: `{"name": "Guilin"}`})
	chain := NewChain[string, city](NewClient(m), func(ctx context.Context, in string) ([]*schema.Message, error) {
		return []*schema.Message{schema.UserMessage(in)}, nil
	}, citySchema(), "city", func() city { return city{} })
	require.Equal(t, "Guilin", chain.Invoke(context.Background(), "karst").Name)
	require.Equal(t, "city", chain.GetToolInfo().Name)
}

func TestStructChainInvoke(t *testing.T) {
	m := llmtest.New(llmtest.Reply{Args: `{"name": "Lijiang"}`})
	chain, err := NewStructChain[string, city](NewClient(m), func(ctx context.Context, in string) ([]*schema.Message, error) {
		return []*schema.Message{schema.UserMessage(in)}, nil
	}, "pick_city", "Pick a city", nil)
	require.NoError(t, err)
	require.Equal(t, "pick_city", chain.GetToolInfo().Name)
	require.Equal(t, "Lijiang", chain.Invoke(context.Background(), "old town").Name)
	require.Equal(t, 1, m.ToolCalls())
}
