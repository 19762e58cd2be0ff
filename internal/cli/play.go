package cli

import (
	"context"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/config"
	"trivia-quiz/internal/tui"
)

// NewPlayCmd plays a quiz in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		amount     int
		category   string
		difficulty string
		noColor    bool
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			service, cleanup, err := buildService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			service.AcquireToken(cmd.Context())
			sessionID := "terminal-" + uuid.NewString()
			defer func() {
				if err := service.Forget(context.Background(), sessionID); err != nil {
					log.Printf("forget session %s failed: %v", sessionID, err)
				}
			}()

			model := tui.NewModel(cmd.Context(), service, tui.Options{
				SessionID: sessionID,
				Start:     app.StartOptions{Amount: amount, Category: category, Difficulty: difficulty},
				NoColor:   noColor || os.Getenv("NO_COLOR") != "",
			})
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	cmd.Flags().IntVar(&amount, "amount", 0, "number of questions (defaults to config)")
	cmd.Flags().StringVar(&category, "category", "", "Open Trivia DB category id")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "easy, medium or hard")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colors")
	return cmd
}
