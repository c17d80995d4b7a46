package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"

	"github.com/tbxark/tripagent/agent"
	"github.com/tbxark/tripagent/config"
	"github.com/tbxark/tripagent/server"
	"github.com/tbxark/tripagent/types"
)

const defaultConfigPath = "config.json"

func main() {
	conf := flag.String("config", defaultConfigPath, "path to config file (.json or .toml)")
	flag.Parse()

	path := *conf
	if path == defaultConfigPath {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch flag.Arg(0) {
	case "serve":
		err = startServer(ctx, cfg)
	case "", "chat":
		err = startApp(ctx, cfg)
	default:
		err = fmt.Errorf("unknown command %q, want chat or serve", flag.Arg(0))
	}
	if err != nil {
		log.Fatalf("start app: %v", err)
	}
}

func startServer(ctx context.Context, cfg *config.Config) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	err = server.New(a.conversation, a.tracker, a.language).Run(ctx, cfg.Listen)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func startApp(ctx context.Context, cfg *config.Config) error {
	slog.SetLogLoggerLevel(cfg.SlogLevel())
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	tripAgent := agent.NewAgent(
		"TripPlanner",
		"An agent that collects travel requirements through conversation and plans an itinerary",
		a.conversation,
	)
	runner := adk.NewRunner(ctx, adk.RunnerConfig{
		Agent: tripAgent,
	})
	chatCtx := agent.WithStateKey(ctx, "cli")
	reader := bufio.NewReader(os.Stdin)
	fmt.Println(welcomeMessage(a.language))
	for {
		fmt.Print(userPrompt(a.language))
		input, rErr := reader.ReadString('\n')
		if rErr != nil {
			fmt.Println(exitMessage(a.language))
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		iter := runner.Run(chatCtx, []*schema.Message{schema.UserMessage(input)})
		for {
			event, ok := iter.Next()
			if !ok {
				break
			}
			if event.Err != nil {
				slog.Error("turn failed", "error", event.Err)
				fmt.Printf("\n%s%s\n======\n", assistantPrompt(a.language), agent.ErrorMessage(a.language))
				continue
			}
			msg, mErr := event.Output.MessageOutput.GetMessage()
			if mErr != nil {
				return mErr
			}
			fmt.Printf("\n%s%v\n======\n", assistantPrompt(a.language), msg.Content)
			if resp, ok := event.Output.CustomizedOutput.(*agent.Response); ok && resp.Final() {
				slog.Debug("session finished", "kind", resp.Kind, "progress", a.tracker.Render())
				a.tracker.Reset()
			}
		}
	}
	return nil
}

func welcomeMessage(lang types.Language) string {
	if lang == types.LanguageEN {
		return "Welcome to the trip planner. Tell me about the trip you have in mind (for example: 3 days in Qingdao):"
	}
	return "欢迎使用旅行规划助手，请输入您的需求（如：我想去青岛玩3天）："
}

func userPrompt(lang types.Language) string {
	if lang == types.LanguageEN {
		return "You: "
	}
	return "用户: "
}

func assistantPrompt(lang types.Language) string {
	if lang == types.LanguageEN {
		return "Assistant: "
	}
	return "助手: "
}

func exitMessage(lang types.Language) string {
	if lang == types.LanguageEN {
		return "Input closed. Bye."
	}
	return "输入错误或已结束。退出。"
}
