package agent

import (
	"context"
	"slices"
)

// StateReadWriter provides read/write access to state using context for routing.
type StateReadWriter interface {
	InitState(ctx context.Context) *ConversationState
	Remove(ctx context.Context) error
	Read(ctx context.Context) (*ConversationState, error)
	Write(ctx context.Context, state *ConversationState) error
}

type stateKeyContext struct{}

const defaultStateKey = "default"

// WithStateKey sets a routing key for state storage in the context.
func WithStateKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, stateKeyContext{}, key)
}

// StateKeyFromContext gets the routing key from the context.
func StateKeyFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(stateKeyContext{})
	if value == nil {
		return "", false
	}
	key, ok := value.(string)
	return key, ok && key != ""
}

func stateKeyOrDefault(ctx context.Context) (string, bool) {
	key, ok := StateKeyFromContext(ctx)
	if ok {
		return key, true
	}
	return defaultStateKey, true
}

// Clone copies the state so a failed turn leaves the stored one untouched.
func (s *ConversationState) Clone() *ConversationState {
	out := *s
	out.Messages = slices.Clone(s.Messages)
	out.Request = s.Request.Clone()
	return &out
}

// CacheStateReadWriter keeps conversation states in a Cache under the "trip:state" namespace.
type CacheStateReadWriter struct {
	store Store[*ConversationState]
	model string
}

func NewCacheStateReadWriter(core Cache[*ConversationState], model string) *CacheStateReadWriter {
	return &CacheStateReadWriter{
		store: NewStore(core, "trip:state", stateKeyOrDefault),
		model: model,
	}
}

func NewMemoryStateReadWriter(model string) *CacheStateReadWriter {
	return NewCacheStateReadWriter(NewMemoryCache[*ConversationState](), model)
}

func (m *CacheStateReadWriter) InitState(ctx context.Context) *ConversationState {
	return NewConversationState(m.model)
}

func (m *CacheStateReadWriter) Read(ctx context.Context) (*ConversationState, error) {
	state, ok, err := m.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !ok || state == nil {
		return m.InitState(ctx), nil
	}
	return state.Clone(), nil
}

func (m *CacheStateReadWriter) Write(ctx context.Context, state *ConversationState) error {
	return m.store.Save(ctx, state.Clone())
}

func (m *CacheStateReadWriter) Remove(ctx context.Context) error {
	return m.store.Delete(ctx)
}

// Exists reports whether a state was stored for the context key.
func (m *CacheStateReadWriter) Exists(ctx context.Context) (bool, error) {
	return m.store.Has(ctx)
}
