package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/manifoldco/promptui"

	"github.com/spigell/skillbridge-assistant/internal/assistant"
)

type scriptedChat struct {
	sessions []string
}

func (s *scriptedChat) Ask(_ context.Context, sessionID, text string) (string, string) {
	s.sessions = append(s.sessions, sessionID)
	if strings.Contains(text, "tempo") {
		return "", "s1"
	}
	return "eco: " + text, "s1"
}

func lines(items []string, final error) func() (string, error) {
	i := 0
	return func() (string, error) {
		if i >= len(items) {
			return "", final
		}
		i++
		return items[i-1], nil
	}
}

func TestChatLoop(t *testing.T) {
	boom := errors.New("terminal gone")

	tests := []struct {
		name    string
		input   []string
		final   error
		wantErr error
		want    []string
	}{
		{name: "exit command", input: []string{"oi", "SAIR", "ignored"}, want: []string{"eco: oi"}},
		{name: "interrupt", input: []string{"oi"}, final: promptui.ErrInterrupt, want: []string{"eco: oi"}},
		{name: "eof", final: promptui.ErrEOF},
		{name: "empty reply shows help", input: []string{"previsão do tempo"}, final: promptui.ErrEOF, want: []string{assistant.HelpMessage}},
		{name: "read failure is returned", input: []string{"oi"}, final: boom, wantErr: boom, want: []string{"eco: oi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			chat := &scriptedChat{}

			err := chatLoop(context.Background(), chat, lines(tt.input, tt.final), &out)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out.String(), w) {
					t.Fatalf("output %q does not contain %q", out.String(), w)
				}
			}
			if strings.Contains(out.String(), "ignored") {
				t.Fatal("input after the exit command must not be answered")
			}
		})
	}
}

func TestChatLoopKeepsSession(t *testing.T) {
	chat := &scriptedChat{}
	var out strings.Builder

	if err := chatLoop(context.Background(), chat, lines([]string{"um", "dois"}, promptui.ErrEOF), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chat.sessions) != 2 || chat.sessions[0] != "" || chat.sessions[1] != "s1" {
		t.Fatalf("session id not carried across turns: %v", chat.sessions)
	}
}
