package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(askCmd)
}

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Ask one question and print the JSON response",
	Long: `Process a single query and print the normalized response as JSON.

Informational and comparative queries produce a cited answer object;
action requests produce the structured action payload.

Examples:
  hragent ask "How many days of sick leave do I get?"
  hragent ask "Apply for earned leave next Monday"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	log := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, _, closeStore, err := prepareAgent(cmd.Context(), cfg, log, false)
	if err != nil {
		return err
	}
	defer closeStore()

	resp, err := a.Process(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
