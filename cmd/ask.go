package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spigell/skillbridge-assistant/internal/assistant"
)

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Answer a single question and exit",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ask(strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func ask(question string) {
	ctx := context.Background()

	a, logger := bootstrap(ctx, "stderr")
	defer a.Close()
	defer logger.Sync()

	reply, _ := a.chat.Ask(ctx, "", question)
	fmt.Println(replyOrHelp(reply))
}

// replyOrHelp substitutes the usage hint for an empty reply.
func replyOrHelp(reply string) string {
	if reply == "" {
		return assistant.HelpMessage
	}
	return reply
}
