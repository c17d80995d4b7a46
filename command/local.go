package command

import (
	"context"
	"strings"
	"unicode"
)

// LocalParser matches a whole message against control keywords. Case, surrounding
// punctuation and a leading slash are ignored, so "/Cancel!" and "取消。" both cancel.
type LocalParser struct {
	keywords map[string]Command
}

var (
	cancelKeywords  = []string{"取消", "退出", "cancel", "quit", "exit"}
	restartKeywords = []string{"重新开始", "重来", "restart", "reset", "start over"}
)

func NewLocalParser() *LocalParser {
	p := &LocalParser{keywords: map[string]Command{}}
	p.Add(Cancel, cancelKeywords...)
	p.Add(Restart, restartKeywords...)
	return p
}

// Add registers extra keywords for cmd.
func (p *LocalParser) Add(cmd Command, keywords ...string) {
	for _, k := range keywords {
		if k = normalize(k); k != "" {
			p.keywords[k] = cmd
		}
	}
}

func (p *LocalParser) ParseCommand(ctx context.Context, input string) (Command, error) {
	if cmd, ok := p.keywords[normalize(input)]; ok {
		return cmd, nil
	}
	return None, nil
}

func normalize(s string) string {
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}
