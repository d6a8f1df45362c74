package main

import (
	"fmt"
	"strings"

	"labeling-service/internal/models"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(healthCmd)
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <text...>",
	Short: "Ask the labeling service to suggest a category",
	Long: `Ask the labeling service for an advisory category. The suggestion is
never recorded; label the sentence yourself afterwards.

Example:
  labeler suggest "they should all be thrown out of the country"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSuggest,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check labeling service health",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func runSuggest(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return fmt.Errorf("%w: text is required", models.ErrValidation)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	suggestion, err := a.client.Suggest(commandContext(cmd), text)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Category:      %s\n", suggestion.Category.DisplayName())
	fmt.Fprintf(out, "Justification: %s\n", suggestion.Justification)
	fmt.Fprintf(out, "Provider:      %s %s\n", suggestion.Provider, suggestion.Model)
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.client.Ping(commandContext(cmd)); err != nil {
		return fmt.Errorf("labeling service at %s is unavailable: %w", a.cfg.API.BaseURL, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Labeling service at %s is healthy\n", a.cfg.API.BaseURL)
	return nil
}
