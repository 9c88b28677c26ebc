package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	chatLabel   = "Você"
	chatExitCmd = "sair"
)

// asker answers one turn of a conversation.
type asker interface {
	Ask(ctx context.Context, sessionID, text string) (reply, newSessionID string)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation in the terminal",
	Run: func(_ *cobra.Command, _ []string) {
		chat()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func chat() {
	ctx := context.Background()

	a, logger := bootstrap(ctx, "stderr")
	defer a.Close()
	defer logger.Sync()

	fmt.Printf("Converse com o assistente SkillBridge. Digite %q ou pressione Ctrl+C para encerrar.\n", chatExitCmd)

	prompt := promptui.Prompt{Label: chatLabel}
	if err := chatLoop(ctx, a.chat, prompt.Run, os.Stdout); err != nil {
		logger.Error("reading the prompt", zap.Error(err))
	}
}

// chatLoop reads lines until the user leaves and prints each reply to out.
// Interrupt, EOF and the exit command end the loop without an error.
func chatLoop(ctx context.Context, chat asker, readLine func() (string, error), out io.Writer) error {
	sessionID := ""

	for {
		text, err := readLine()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}

		if strings.EqualFold(strings.TrimSpace(text), chatExitCmd) {
			return nil
		}

		var reply string
		reply, sessionID = chat.Ask(ctx, sessionID, text)
		fmt.Fprintf(out, "\n%s\n\n", replyOrHelp(reply))
	}
}
