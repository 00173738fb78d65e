package main

import (
	"encoding/json"
	"testing"

	"tscproj/internal/journal"
	"tscproj/internal/testsupport"
)

func TestHistoryRecordsRuns(t *testing.T) {
	cfgPath := writeTestConfig(t, testsupport.NewConfig(t, testsupport.WithHistory()))
	input := testsupport.WriteProject(t, t.TempDir(), "demo.tscproj", testsupport.ScenarioProject)

	if _, _, err := runCLI(t, []string{"xyscale", input, "1.5"}, cfgPath); err != nil {
		t.Fatalf("xyscale: %v", err)
	}
	if _, _, err := runCLI(t, []string{"timescale", "--", input, "-2"}, cfgPath); err == nil {
		t.Fatal("expected invalid factor error")
	}

	out, _, err := runCLI(t, []string{"history", "--format", "json"}, cfgPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var entries []journal.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode history: %v\n%s", err, out)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(entries))
	}
	if entries[0].Status != "rejected" || entries[0].ErrorKind != "invalid_factor" || entries[0].Kind != "temporal" {
		t.Fatalf("unexpected newest entry %+v", entries[0])
	}
	if entries[1].Status != "succeeded" || entries[1].Factor != 1.5 || entries[1].Schema != "current" || entries[1].Output != input {
		t.Fatalf("unexpected first entry %+v", entries[1])
	}
	if entries[0].RunID == entries[1].RunID {
		t.Fatal("separate invocations must have distinct run IDs")
	}

	out, _, err = runCLI(t, []string{"history", "-n", "1"}, cfgPath)
	if err != nil {
		t.Fatalf("history table: %v", err)
	}
	requireContains(t, out, "invalid_factor")
}

func TestHistoryDisabled(t *testing.T) {
	cfgPath := writeTestConfig(t, testsupport.NewConfig(t))
	out, _, err := runCLI(t, []string{"history"}, cfgPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "disabled")
}
