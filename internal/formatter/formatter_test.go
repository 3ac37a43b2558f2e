package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
	th "github.com/desertthunder/listsync/internal/testing"
)

func sampleLists() []models.SourceList {
	return []models.SourceList{
		{ID: "n1", Title: "Groceries", Items: []models.SourceItem{
			{ID: "1", Text: "Milk"},
			{ID: "2", Text: "Bread, sliced", Checked: true},
			{ID: "3", Text: "Eggs"},
		}},
		{ID: "n2", Title: "Hardware"},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "", want: FormatText},
		{input: "TXT", want: FormatText},
		{input: "json", want: FormatJSON},
		{input: " csv ", want: FormatCSV},
		{input: "md", want: FormatMarkdown},
		{input: "markdown", want: FormatMarkdown},
		{input: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
			}
		})
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(sampleLists())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded []models.SourceList
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 2 || len(decoded[0].Items) != 3 || !decoded[0].Items[1].Checked {
			t.Errorf("unexpected decoded lists: %+v", decoded)
		}

		empty, _ := ExportToJSON(nil)
		if strings.TrimSpace(string(empty)) != "[]" {
			t.Errorf("expected empty array, got %s", empty)
		}
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleLists())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "List,Item,Checked\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, `Groceries,"Bread, sliced",true`) {
			t.Errorf("CSV should quote fields containing commas, got: %s", output)
		}
		if strings.Count(output, "\n") != 4 {
			t.Errorf("expected header plus 3 rows, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleLists())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"## Groceries", "- [ ] Milk", "- [x] Bread, sliced", "## Hardware", "_No items_"} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleLists())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Groceries (2 unchecked)") || !strings.Contains(output, "  2. Eggs") {
			t.Errorf("unexpected text output: %s", output)
		}
		if strings.Contains(output, "Bread") {
			t.Error("text output should omit checked items")
		}
	})
}

func TestWrite(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, FormatCSV, sampleLists()); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if !strings.Contains(buf.String(), "Milk") {
			t.Errorf("unexpected output: %s", buf.String())
		}
	})

	t.Run("WriterError", func(t *testing.T) {
		if err := Write(&th.FWriter{}, FormatText, sampleLists()); err == nil {
			t.Error("expected write error")
		}
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, Format("yaml"), sampleLists()); err == nil {
			t.Error("expected format error")
		}
	})
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	for _, format := range []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatText} {
		t.Run(string(format), func(t *testing.T) {
			path, err := WriteFile(format, sampleLists(), filepath.Join(dir, "lists."+format.Extension()))
			if err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			th.AssertFileExists(t, path)
			if content := th.MustReadFile(t, path); !strings.Contains(content, "Groceries") {
				t.Errorf("file missing list title: %s", content)
			}
		})
	}

	t.Run("Unwritable", func(t *testing.T) {
		if _, err := WriteFile(FormatText, sampleLists(), filepath.Join(dir, "missing", "lists.txt")); err == nil {
			t.Error("expected error writing into a missing directory")
		}
	})
}

func TestWriteRuns(t *testing.T) {
	start := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	runs := []*models.RunResult{
		{
			ID: "r2", Sequence: 2, StartedAt: start, FinishedAt: start.Add(1500 * time.Millisecond), TotalAdded: 3,
			Pairs: []models.PairResult{{Pair: models.SyncPair{Source: "Groceries", Target: "Shopping"}, Status: models.PairSynced, Added: 3}},
		},
		{ID: "r1", Sequence: 1, StartedAt: start, FinishedAt: start, Err: "missing credentials"},
	}

	var buf bytes.Buffer
	if err := WriteRuns(&buf, runs); err != nil {
		t.Fatalf("WriteRuns failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d: %s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "1.5s") || !strings.Contains(lines[1], "Groceries") {
		t.Errorf("unexpected first row: %q", lines[1])
	}
	if !strings.Contains(lines[2], "missing credentials") {
		t.Errorf("unexpected second row: %q", lines[2])
	}

	lw := th.NewLimitedWriter(0, 0, &buf)
	if err := WriteRuns(&lw, runs); err == nil {
		t.Error("expected error from failing writer")
	}
}
