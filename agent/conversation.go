package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tbxark/tripagent/clarify"
	"github.com/tbxark/tripagent/command"
	"github.com/tbxark/tripagent/types"
)

// Conversation routes a user utterance to the session state named by the context key and
// runs one flow turn. Turns of one session never overlap.
type Conversation struct {
	flow     *TripFlow
	states   StateReadWriter
	commands command.Parser
	locks    *keyedMutex
}

func NewConversation(flow *TripFlow, states StateReadWriter, commands command.Parser) *Conversation {
	if commands == nil {
		commands = command.NewLocalParser()
	}
	return &Conversation{
		flow:     flow,
		states:   states,
		commands: commands,
		locks:    newKeyedMutex(),
	}
}

func (c *Conversation) Chat(ctx context.Context, input string) (*Response, error) {
	key, _ := stateKeyOrDefault(ctx)
	unlock := c.locks.Lock(key)
	defer unlock()

	cmd, err := c.commands.ParseCommand(ctx, input)
	if err != nil {
		slog.Warn("parse command failed", "error", err)
		cmd = command.None
	}
	switch cmd {
	case command.Cancel:
		if err := c.states.Remove(ctx); err != nil {
			return nil, fmt.Errorf("remove state: %w", err)
		}
		return &Response{Kind: KindCancelled, Message: cancelledMessage(c.flow.language)}, nil
	case command.Restart:
		if err := c.states.Remove(ctx); err != nil {
			return nil, fmt.Errorf("remove state: %w", err)
		}
		return &Response{
			Kind:    KindQuestion,
			Message: restartMessage(c.flow.language),
			Field:   types.FieldDestination,
		}, nil
	}

	state, err := c.states.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	resp, err := c.flow.Invoke(ctx, state, input)
	if err != nil {
		return nil, fmt.Errorf("flow invoke failed: %w", err)
	}
	if resp.Final() {
		err = c.states.Remove(ctx)
	} else {
		err = c.states.Write(ctx, state)
	}
	if err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}
	slog.Info("turn finished", "session", key, "kind", resp.Kind, "field", resp.Field, "turns", state.Metadata.UserTurns)
	return resp, nil
}

// State returns the stored state of the session in ctx.
func (c *Conversation) State(ctx context.Context) (*ConversationState, error) {
	return c.states.Read(ctx)
}

// Reset drops the session in ctx.
func (c *Conversation) Reset(ctx context.Context) error {
	key, _ := stateKeyOrDefault(ctx)
	unlock := c.locks.Lock(key)
	defer unlock()
	return c.states.Remove(ctx)
}

func cancelledMessage(lang types.Language) string {
	if lang == types.LanguageEN {
		return "Trip planning cancelled."
	}
	return "已取消本次行程规划。"
}

func restartMessage(lang types.Language) string {
	if lang == types.LanguageEN {
		return "Sure, let's start over. " + clarify.Question(lang, types.FieldDestination)
	}
	return "好的，我们重新开始。" + clarify.Question(lang, types.FieldDestination)
}

// ErrorMessage is what transports show instead of an internal error.
func ErrorMessage(lang types.Language) string {
	return clarify.FollowUp(lang, nil)
}
