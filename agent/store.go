package agent

import (
	"context"
	"errors"
)

var ErrNoStateKey = errors.New("state key not found in context")

// Store binds a Cache to the session key carried by the context. Keys are stored as
// "<prefix>:<session key>".
type Store[S any] struct {
	core   Cache[S]
	prefix string
	keyFn  func(ctx context.Context) (string, bool)
}

func NewStore[S any](core Cache[S], prefix string, keyFn func(ctx context.Context) (string, bool)) Store[S] {
	if keyFn == nil {
		keyFn = StateKeyFromContext
	}
	return Store[S]{core: core, prefix: prefix, keyFn: keyFn}
}

func (s Store[S]) cacheKey(ctx context.Context) (string, error) {
	key, ok := s.keyFn(ctx)
	if !ok {
		return "", ErrNoStateKey
	}
	if s.prefix == "" {
		return key, nil
	}
	return s.prefix + ":" + key, nil
}

func (s Store[S]) Load(ctx context.Context) (val S, found bool, err error) {
	key, err := s.cacheKey(ctx)
	if err != nil {
		return val, false, err
	}
	return s.core.Get(ctx, key)
}

func (s Store[S]) Save(ctx context.Context, val S) error {
	key, err := s.cacheKey(ctx)
	if err != nil {
		return err
	}
	return s.core.Set(ctx, key, val)
}

func (s Store[S]) Delete(ctx context.Context) error {
	key, err := s.cacheKey(ctx)
	if err != nil {
		return err
	}
	return s.core.Del(ctx, key)
}

func (s Store[S]) Has(ctx context.Context) (bool, error) {
	key, err := s.cacheKey(ctx)
	if err != nil {
		return false, err
	}
	return s.core.Exists(ctx, key)
}
