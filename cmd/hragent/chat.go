package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"hragent/internal/tui"
)

var rebuildIndex bool

func init() {
	chatCmd.Flags().BoolVar(&rebuildIndex, "rebuild", false, "Rebuild the index before starting")
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat interface",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	log := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, summary, closeStore, err := prepareAgent(cmd.Context(), cfg, log, rebuildIndex)
	if err != nil {
		return err
	}
	defer closeStore()

	m := tui.New(a, summary)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return err
	}
	return nil
}
