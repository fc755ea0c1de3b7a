package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var askSession string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed policies",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "cli", "conversation session id")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	answer, err := ragService.GenerateAnswer(commandContext(cmd), strings.Join(args, " "), askSession)
	if err != nil {
		return err
	}

	cmd.Println(answer.Answer)
	if len(answer.Sources) == 0 {
		return nil
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i, src := range answer.Sources {
		if src.Page != nil {
			cmd.Printf("  [%d] %s p.%d (%.2f)\n", i+1, src.DocumentName, *src.Page, src.RelevanceScore)
		} else {
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, src.DocumentName, src.RelevanceScore)
		}
	}
	return nil
}
