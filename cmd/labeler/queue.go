package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"labeling-service/internal/csvcodec"
	"labeling-service/internal/models"
	"labeling-service/internal/segmenter"
	"labeling-service/internal/workflow"

	"github.com/spf13/cobra"
)

var (
	ingestLines bool

	queueLedger bool
	queueLimit  int

	exportDir    string
	exportStdout bool
)

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(exportCmd)

	ingestCmd.Flags().BoolVar(&ingestLines, "lines", false, "treat every non-empty line as one sentence instead of splitting on punctuation")

	queueCmd.Flags().BoolVar(&queueLedger, "ledger", false, "show labeled sentences instead of pending ones")
	queueCmd.Flags().IntVar(&queueLimit, "limit", 20, "maximum number of entries to show (0 for all)")

	exportCmd.Flags().StringVar(&exportDir, "dir", "", "export directory (overrides config)")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "print the CSV instead of writing a file")
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Add sentences from a text file to the local queue",
	Long: `Split a text file into sentences and append them to the local queue.

Examples:
  # Split a paragraph file on sentence punctuation
  labeler ingest comments.txt

  # One sentence per line, read from stdin
  cat sentences.txt | labeler ingest --lines -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show pending or labeled sentences",
	Long: `Show the sentences still waiting for a label, or the labeled ledger.

Examples:
  # Pending sentences in the local queue
  labeler queue

  # Pending sentences on the labeling service
  labeler queue --source remote

  # Everything labeled so far
  labeler queue --ledger --limit 0`,
	Args: cobra.NoArgs,
	RunE: runQueue,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export labeled sentences as labeled_sentences.csv",
	Long: `Export the ledger as labeled_sentences.csv.

With the local source the local ledger is exported. With the remote source
the labeling service's labels are downloaded.

Examples:
  labeler export --dir ./exports
  labeler export --stdout > labels.csv`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runIngest(cmd *cobra.Command, args []string) error {
	content, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	var sentences []string
	if ingestLines {
		sentences = splitLines(content)
	} else {
		sentences = segmenter.Segment(content)
	}
	if len(sentences) == 0 {
		return fmt.Errorf("%w: no sentences found in input", models.ErrValidation)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.queue.Enqueue(commandContext(cmd), sentences); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Queued %d sentences.\n", len(sentences))
	return nil
}

func runQueue(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	if queueLedger {
		ledger, err := a.queue.Ledger(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%d labeled sentences\n", len(ledger))
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for i, r := range limit(ledger, queueLimit) {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, r.Label.DisplayName(), r.Timestamp, r.Sentence)
		}
		return w.Flush()
	}

	var pending []string
	if a.remote() {
		pending, err = a.client.UnlabeledSentences(ctx)
	} else {
		pending, err = a.queue.Pending(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%d pending sentences\n", len(pending))
	for i, s := range limit(pending, queueLimit) {
		fmt.Fprintf(out, "%d. %s\n", i+1, s)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	dir := a.cfg.Export.Dir
	if exportDir != "" {
		dir = exportDir
	}

	if !a.remote() && !exportStdout {
		path, err := workflow.NewExporter(a.queue, dir, a.logger).Export(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported %s\n", path)
		return nil
	}

	var data []byte
	if a.remote() {
		data, err = a.client.ExportCSV(ctx)
	} else {
		var text string
		text, err = a.queue.ExportLedger(ctx)
		data = []byte(text)
	}
	if err != nil {
		return err
	}

	if exportStdout {
		_, err := out.Write(data)
		return err
	}

	path := filepath.Join(dir, csvcodec.FileName)
	if err := workflow.WriteFileAtomic(path, data); err != nil {
		return err
	}

	fmt.Fprintf(out, "Exported %s\n", path)
	return nil
}

// readInput reads the file named by args[0], or stdin when it is "-" or missing.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", args[0], err)
	}
	return string(data), nil
}

func splitLines(content string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func limit[T any](items []T, n int) []T {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}
