package main

import (
	"errors"
	"fmt"
	"strings"

	"labeling-service/internal/models"
	"labeling-service/internal/workflow"

	"github.com/spf13/cobra"
)

var labelText string

func init() {
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(labelCmd)
	rootCmd.AddCommand(skipCmd)
	rootCmd.AddCommand(labelTextCmd)
	rootCmd.AddCommand(submitCmd)

	labelCmd.Flags().StringVar(&labelText, "text", "", "sentence to label (required with the remote source)")
}

const categoryHelp = `Categories can be given by name, display name or number:
  1 normal  2 hate_speech  3 offensive  4 religious_hate  5 political_hate`

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next sentence to label",
	Args:  cobra.NoArgs,
	RunE:  runNext,
}

var labelCmd = &cobra.Command{
	Use:   "label <category>",
	Short: "Label the next sentence",
	Long: `Label the sentence at the front of the local queue, or a given sentence.

` + categoryHelp + `

Examples:
  # Label the front of the local queue
  labeler label hate_speech

  # Label a sentence served by the labeling service
  labeler label --source remote --text "Some sentence." 1`,
	Args: cobra.ExactArgs(1),
	RunE: runLabel,
}

var skipCmd = &cobra.Command{
	Use:   "skip",
	Short: "Skip the next sentence without labeling it",
	Args:  cobra.NoArgs,
	RunE:  runSkip,
}

var labelTextCmd = &cobra.Command{
	Use:   "label-text <category> <text...>",
	Short: "Label text you write yourself",
	Long: `Label a piece of text that did not come from the queue.

` + categoryHelp + `

Example:
  labeler label-text offensive "you are all idiots"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runLabelText,
}

var submitCmd = &cobra.Command{
	Use:   "submit [paragraph...]",
	Short: "Split a paragraph into sentences and queue them",
	Long: `Split a paragraph into sentences and queue them for labeling.

With the local source the sentences go to the local queue; with the remote
source the labeling service splits and stores them.

Examples:
  labeler submit "First one. Second one? Third!"
  cat paragraph.txt | labeler submit -`,
	RunE: runSubmit,
}

func runNext(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	text, err := a.ctrl.Next(commandContext(cmd))
	if errors.Is(err, workflow.ErrNoWork) {
		fmt.Fprintln(cmd.OutOrStdout(), "No sentences left to label.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func runLabel(cmd *cobra.Command, args []string) error {
	category, err := models.ParseCategory(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	if text := strings.TrimSpace(labelText); text != "" {
		if err := a.source.Label(ctx, text, category); err != nil {
			return err
		}
		fmt.Fprintf(out, "Labeled %q as %s\n", text, category.DisplayName())
		return nil
	}

	if a.remote() {
		return fmt.Errorf("%w: --text is required with the remote source (or use 'labeler session')", models.ErrValidation)
	}

	text, err := a.ctrl.Next(ctx)
	if err != nil {
		return err
	}

	adv, err := a.ctrl.Label(ctx, category)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Labeled %q as %s\n", text, category.DisplayName())
	printAdvance(cmd, adv)
	return nil
}

func runSkip(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := commandContext(cmd)

	text, err := a.ctrl.Next(ctx)
	if err != nil {
		return err
	}

	adv, err := a.ctrl.Skip(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Skipped %q\n", text)
	printAdvance(cmd, adv)
	return nil
}

func runLabelText(cmd *cobra.Command, args []string) error {
	category, err := models.ParseCategory(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	adv, err := a.ctrl.SubmitUserInput(commandContext(cmd), strings.Join(args[1:], " "), category)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Labeled your text as %s\n", category.DisplayName())
	printAdvance(cmd, adv)
	return nil
}

func runSubmit(cmd *cobra.Command, args []string) error {
	var paragraph string
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		content, err := readInput(cmd, nil)
		if err != nil {
			return err
		}
		paragraph = content
	} else {
		paragraph = strings.Join(args, " ")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	sentences, err := a.ctrl.SubmitParagraph(commandContext(cmd), paragraph)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Paragraph processed successfully! Created %d sentences.\n", len(sentences))
	for i, s := range sentences {
		fmt.Fprintf(out, "%d. %s\n", i+1, s)
	}
	return nil
}
