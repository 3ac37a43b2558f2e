// package formatter renders source lists and run history as JSON, CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
)

// Format names an output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat accepts the format names and the md/txt shorthands.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, name)
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	case FormatMarkdown:
		return "md"
	default:
		return "txt"
	}
}

// ExportToJSON renders lists as an indented JSON array, checked items included.
func ExportToJSON(lists []models.SourceList) ([]byte, error) {
	if lists == nil {
		lists = []models.SourceList{}
	}
	data, err := json.MarshalIndent(lists, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lists: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV converts lists to CSV format with columns: List, Item, Checked
func ExportToCSV(lists []models.SourceList) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"List", "Item", "Checked"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, list := range lists {
		for _, item := range list.Items {
			record := []string{list.Title, item.Text, strconv.FormatBool(item.Checked)}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts lists to Markdown task lists, one section per list
func ExportToMarkdown(lists []models.SourceList) ([]byte, error) {
	var buf bytes.Buffer

	for i, list := range lists {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(fmt.Sprintf("## %s\n\n", list.Title))

		if len(list.Items) == 0 {
			buf.WriteString("_No items_\n")
			continue
		}
		for _, item := range list.Items {
			mark := " "
			if item.Checked {
				mark = "x"
			}
			buf.WriteString(fmt.Sprintf("- [%s] %s\n", mark, item.Text))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts lists to plain text with unchecked items only
func ExportToText(lists []models.SourceList) ([]byte, error) {
	var buf bytes.Buffer

	for _, list := range lists {
		unchecked := list.Unchecked()
		buf.WriteString(fmt.Sprintf("%s (%d unchecked)\n", list.Title, len(unchecked)))
		for i, text := range unchecked {
			buf.WriteString(fmt.Sprintf("  %d. %s\n", i+1, text))
		}
	}

	return buf.Bytes(), nil
}

// Export renders lists in the given format.
func Export(format Format, lists []models.SourceList) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportToJSON(lists)
	case FormatCSV:
		return ExportToCSV(lists)
	case FormatMarkdown:
		return ExportToMarkdown(lists)
	case FormatText:
		return ExportToText(lists)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// Write renders lists and writes them to w.
func Write(w io.Writer, format Format, lists []models.SourceList) error {
	data, err := Export(format, lists)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// WriteFile exports lists to a file.
//
// Defaults to lists.{ext} as the filename.
func WriteFile(format Format, lists []models.SourceList, path string) (string, error) {
	if path == "" {
		path = "lists." + format.Extension()
	}

	data, err := Export(format, lists)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return path, nil
}

// WriteRuns prints run history as an aligned table: sequence, start time, duration, added, pairs and error.
func WriteRuns(w io.Writer, runs []*models.RunResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "#\tSTARTED\tDURATION\tADDED\tPAIRS\tERROR")
	for _, run := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			run.Sequence,
			run.StartedAt.Local().Format(time.DateTime),
			run.Duration().Round(time.Millisecond),
			run.TotalAdded,
			pairSummary(run.Pairs),
			run.Err,
		)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func pairSummary(pairs []models.PairResult) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s:%s", p.Pair, p.Status))
	}
	return strings.Join(parts, " ")
}
