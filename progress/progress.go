package progress

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

const (
	StatusDone  = "done"
	StatusError = "error"
)

// Reporter receives status updates from workflow steps. Implementations must be safe for
// concurrent use.
type Reporter interface {
	Report(agent, status string)
}

type ReporterFunc func(agent, status string)

func (f ReporterFunc) Report(agent, status string) {
	f(agent, status)
}

type nop struct{}

func (nop) Report(string, string) {}

var Nop Reporter = nop{}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Reporter) Reporter {
	if r == nil {
		return Nop
	}
	return r
}

// Logger writes every status to slog.
type Logger struct {
	Logger *slog.Logger
}

func (l Logger) Report(agent, status string) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("agent status", "agent", agent, "status", status)
}

// Multi fans a status out to several reporters.
type Multi []Reporter

func (m Multi) Report(agent, status string) {
	for _, r := range m {
		if r != nil {
			r.Report(agent, status)
		}
	}
}

// Tracker keeps the latest status of each agent.
type Tracker struct {
	mu     sync.RWMutex
	status map[string]string
}

func NewTracker() *Tracker {
	return &Tracker{status: map[string]string{}}
}

func (t *Tracker) Report(agent, status string) {
	t.mu.Lock()
	t.status[agent] = status
	t.mu.Unlock()
}

func (t *Tracker) Status(agent string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.status[agent]
	return s, ok
}

// Snapshot returns a copy of the status table.
func (t *Tracker) Snapshot() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]string, len(t.status))
	for k, v := range t.status {
		out[k] = v
	}
	return out
}

func (t *Tracker) Reset() {
	t.mu.Lock()
	clear(t.status)
	t.mu.Unlock()
}

// Render draws the table sorted by agent name.
func (t *Tracker) Render() string {
	snapshot := t.Snapshot()
	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	slices.Sort(names)

	var buf strings.Builder
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Agent", "Status")
	for _, name := range names {
		_ = table.Append(name, symbol(snapshot[name])+" "+snapshot[name])
	}
	_ = table.Render()
	return buf.String()
}

func symbol(status string) string {
	switch strings.ToLower(status) {
	case StatusDone:
		return "✓"
	case StatusError:
		return "✗"
	default:
		return "⋯"
	}
}
