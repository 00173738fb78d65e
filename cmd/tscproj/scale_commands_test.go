package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tscproj/internal/testsupport"
	"tscproj/internal/transform"
)

func TestXYScaleInPlaceWritesBackup(t *testing.T) {
	cfgPath := writeTestConfig(t, testsupport.NewConfig(t))
	dir := t.TempDir()
	input := testsupport.WriteProject(t, dir, "demo.tscproj", testsupport.ScenarioProject)

	out, _, err := runCLI(t, []string{"xyscale", input, "2"}, cfgPath)
	if err != nil {
		t.Fatalf("xyscale: %v", err)
	}
	requireContains(t, out, "Scaled project")
	requireContains(t, out, "demo.tscproj.backup")

	if got := testsupport.ReadFile(t, input+".backup"); got != testsupport.ScenarioProject {
		t.Fatalf("backup does not hold the original: %q", got)
	}

	clip := firstClip(t, loadOutput(t, input))
	want := []float64{20, 40, 200, 100}
	got := rectValues(t, clip)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rect = %v, want %v", got, want)
		}
	}
	if start, _ := clip.Float("start"); start != 2 {
		t.Fatalf("start changed to %v", start)
	}
}

func TestTimeScaleToSeparateOutput(t *testing.T) {
	cfgPath := writeTestConfig(t, testsupport.NewConfig(t))
	dir := t.TempDir()
	input := testsupport.WriteProject(t, dir, "demo.tscproj", testsupport.ScenarioProject)
	output := filepath.Join(dir, "out", "slow.tscproj")

	if _, _, err := runCLI(t, []string{"timescale", input, "2", "-o", output}, cfgPath); err != nil {
		t.Fatalf("timescale: %v", err)
	}

	if got := testsupport.ReadFile(t, input); got != testsupport.ScenarioProject {
		t.Fatalf("input was modified: %q", got)
	}
	if _, err := os.Stat(input + ".backup"); !os.IsNotExist(err) {
		t.Fatalf("no backup expected when writing elsewhere, stat err %v", err)
	}

	clip := firstClip(t, loadOutput(t, output))
	start, _ := clip.Float("start")
	dur, _ := clip.Float("duration")
	if start != 4 || dur != 8 {
		t.Fatalf("start/duration = %v/%v, want 4/8", start, dur)
	}
	if got := rectValues(t, clip); got[2] != 100 {
		t.Fatalf("rect changed under temporal scaling: %v", got)
	}
}

func TestScaleNoBackup(t *testing.T) {
	cfgPath := writeTestConfig(t, testsupport.NewConfig(t))
	input := testsupport.WriteProject(t, t.TempDir(), "demo.tscproj", testsupport.ScenarioProject)

	if _, _, err := runCLI(t, []string{"xyscale", "--no-backup", input, "0.5"}, cfgPath); err != nil {
		t.Fatalf("xyscale: %v", err)
	}
	if _, err := os.Stat(input + ".backup"); !os.IsNotExist(err) {
		t.Fatalf("expected no backup, stat err %v", err)
	}
}

func TestScaleRejectsBadFactor(t *testing.T) {
	cfgPath := writeTestConfig(t, testsupport.NewConfig(t))
	input := testsupport.WriteProject(t, t.TempDir(), "demo.tscproj", testsupport.ScenarioProject)

	for _, factor := range []string{"0", "-2.0"} {
		_, _, err := runCLI(t, []string{"xyscale", "--", input, factor}, cfgPath)
		var factorErr *transform.InvalidFactorError
		if !errors.As(err, &factorErr) {
			t.Fatalf("factor %s: expected InvalidFactorError, got %v", factor, err)
		}
	}
	if _, _, err := runCLI(t, []string{"timescale", input, "fast"}, cfgPath); err == nil {
		t.Fatal("expected error for non-numeric factor")
	}
	if got := testsupport.ReadFile(t, input); got != testsupport.ScenarioProject {
		t.Fatalf("input was modified: %q", got)
	}
	if _, err := os.Stat(input + ".backup"); !os.IsNotExist(err) {
		t.Fatalf("rejected run must not write a backup, stat err %v", err)
	}
}

func TestScaleReportsWarnings(t *testing.T) {
	cfgPath := writeTestConfig(t, testsupport.NewConfig(t))
	input := testsupport.WriteProject(t, t.TempDir(), "odd.tscproj",
		`{"version":"9.0","timeline":{"scenes":[{"medias":[{"start":"soon","duration":Infinity}]}]},"sourceBin":{"sources":[]}}`)

	out, _, err := runCLI(t, []string{"timescale", input, "2"}, cfgPath)
	if err != nil {
		t.Fatalf("timescale: %v", err)
	}
	requireContains(t, out, "values left unchanged")
	requireContains(t, out, "written as 0.0")

	clip := firstClip(t, loadOutput(t, input))
	if d, _ := clip.Float("duration"); d != 0 {
		t.Fatalf("non-finite duration not sanitized: %v", d)
	}
}

func TestScaleMissingFile(t *testing.T) {
	cfgPath := writeTestConfig(t, testsupport.NewConfig(t))
	_, _, err := runCLI(t, []string{"xyscale", filepath.Join(t.TempDir(), "missing.tscproj"), "2"}, cfgPath)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
