package models

import (
	"reflect"
	"testing"
	"time"
)

func TestSourceListUnchecked(t *testing.T) {
	list := SourceList{
		Title: "Groceries",
		Items: []SourceItem{
			{ID: "1", Text: "  Milk "},
			{ID: "2", Text: "Bread", Checked: true},
			{ID: "3", Text: "   "},
			{ID: "4", Text: "Eggs"},
		},
	}

	got := list.Unchecked()
	want := []string{"Milk", "Eggs"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Unchecked() = %v, want %v", got, want)
	}
}

func TestRunResultValidate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		run     RunResult
		wantErr bool
	}{
		{name: "valid", run: RunResult{ID: "a", StartedAt: now, FinishedAt: now.Add(time.Second)}},
		{name: "unfinished", run: RunResult{ID: "a", StartedAt: now}},
		{name: "missing id", run: RunResult{StartedAt: now}, wantErr: true},
		{name: "missing start", run: RunResult{ID: "a"}, wantErr: true},
		{name: "finished before start", run: RunResult{ID: "a", StartedAt: now, FinishedAt: now.Add(-time.Second)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
