package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"labeling-service/internal/models"
	"labeling-service/internal/workflow"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sessionCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Label sentences interactively",
	Long: `Start an interactive labeling session.

Each sentence is shown in turn. Type a category number or name to label it.
Other commands:
  s                      skip the sentence
  t <category> <text>    label your own text
  p <paragraph>          split a paragraph and queue the sentences
  h                      ask the labeling service for a suggestion
  e                      export labeled_sentences.csv
  ?                      show help
  q                      quit`,
	Args: cobra.NoArgs,
	RunE: runSession,
}

// session is one interactive labeling run.
type session struct {
	app *app
	ctx context.Context
	out io.Writer
}

func runSession(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	s := &session{app: a, ctx: commandContext(cmd), out: cmd.OutOrStdout()}
	s.help()
	s.fetch()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			break
		}
		if quit := s.handle(strings.TrimSpace(scanner.Text())); quit {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	fmt.Fprintln(s.out, "Bye.")
	return nil
}

// handle runs one input line and reports whether the session should end.
func (s *session) handle(line string) bool {
	if line == "" {
		return false
	}

	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(command) {
	case "q", "quit", "exit":
		return true
	case "?", "help":
		s.help()
	case "s", "skip":
		s.skip()
	case "t", "text":
		s.labelText(rest)
	case "p", "paragraph":
		s.submit(rest)
	case "h", "hint":
		s.suggest()
	case "e", "export":
		s.export()
	default:
		s.label(line)
	}
	return false
}

func (s *session) help() {
	fmt.Fprintln(s.out, "Categories:")
	for i, c := range models.Categories {
		fmt.Fprintf(s.out, "  %d) %s\n", i+1, c.DisplayName())
	}
	fmt.Fprintln(s.out, "Commands: s skip, t <category> <text>, p <paragraph>, h hint, e export, q quit")
}

func (s *session) fetch() {
	text, err := s.app.ctrl.Next(s.ctx)
	s.showNext(text, err)
}

func (s *session) showNext(text string, err error) {
	switch {
	case err == nil:
		fmt.Fprintf(s.out, "\nSentence: %s\n", text)
	case errors.Is(err, workflow.ErrNoWork):
		fmt.Fprintln(s.out, "No sentences left to label. Use p <paragraph> to add some.")
	default:
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
}

func (s *session) label(input string) {
	category, err := models.ParseCategory(input)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v (type ? for help)\n", err)
		return
	}

	if s.app.ctrl.State() != workflow.Ready {
		s.fetch()
		return
	}

	text, _ := s.app.ctrl.Current()
	adv, err := s.app.ctrl.Label(s.ctx, category)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(s.out, "Labeled %q as %s\n", text, category.DisplayName())
	s.report(adv)
}

func (s *session) skip() {
	adv, err := s.app.ctrl.Skip(s.ctx)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	s.report(adv)
}

func (s *session) labelText(rest string) {
	name, text, _ := strings.Cut(rest, " ")
	category, err := models.ParseCategory(name)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	adv, err := s.app.ctrl.SubmitUserInput(s.ctx, text, category)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(s.out, "Labeled your text as %s\n", category.DisplayName())
	if adv.ExportErr != nil {
		fmt.Fprintf(s.out, "Export failed: %v\n", adv.ExportErr)
	}
}

func (s *session) submit(paragraph string) {
	sentences, err := s.app.ctrl.SubmitParagraph(s.ctx, paragraph)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(s.out, "Paragraph processed successfully! Created %d sentences.\n", len(sentences))
	if s.app.ctrl.State() == workflow.Idle {
		s.fetch()
	}
}

func (s *session) suggest() {
	text, ok := s.app.ctrl.Current()
	if !ok {
		fmt.Fprintln(s.out, "No sentence to suggest a category for.")
		return
	}

	suggestion, err := s.app.client.Suggest(s.ctx, text)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(s.out, "Suggestion: %s (%s)", suggestion.Category.DisplayName(), suggestion.Provider)
	if suggestion.Justification != "" {
		fmt.Fprintf(s.out, ": %s", suggestion.Justification)
	}
	fmt.Fprintln(s.out)
}

func (s *session) export() {
	path, err := s.app.ctrl.Export(s.ctx)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Exported %s\n", path)
}

func (s *session) report(adv workflow.Advance) {
	if adv.ExportPath != "" {
		fmt.Fprintf(s.out, "Exported %s\n", adv.ExportPath)
	}
	if adv.ExportErr != nil {
		fmt.Fprintf(s.out, "Export failed: %v\n", adv.ExportErr)
	}
	s.showNext(adv.Next, adv.FetchErr)
}
