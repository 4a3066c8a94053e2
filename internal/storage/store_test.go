package storage

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/kmishmael/dieselops/internal/plant"
	"github.com/kmishmael/dieselops/internal/sim"
)

func sampleResult() (*sim.RunResult, []Record) {
	result := &sim.RunResult{
		StepsTaken: 2,
		Metrics:    map[string]float64{"fuel_consumed": 1.5},
		Final: sim.Snapshot{
			Plant:  plant.State{Time: 2, PowerOutput: 310},
			Alerts: []string{"low efficiency: 12.0%"},
		},
	}
	records := []Record{
		{Time: 1, PowerOutput: 300, EngineTemperature: 79.5, Efficiency: 39, FuelConsumption: 900, NOx: 40},
		{Time: 2, PowerOutput: 310, EngineTemperature: 80.1, Efficiency: 40, FuelConsumption: 910, NOx: 42},
	}
	return result, records
}

func TestSaveAndLoadRun(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	result, records := sampleResult()
	runID, err := store.Save("baseload", 0.5, 600, 7, result, records)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(runID, "baseload_") {
		t.Errorf("run id: got %q", runID)
	}

	meta, err := store.Load(runID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meta.Label != "baseload" || meta.Seed != 7 {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.Metrics["fuel_consumed"] != 1.5 {
		t.Errorf("metrics: %v", meta.Metrics)
	}
	if len(meta.Alerts) != 1 {
		t.Errorf("alerts: %v", meta.Alerts)
	}
}

func TestLoadSamplesRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	result, records := sampleResult()
	runID, err := store.Save("trip", 0.5, 600, 0, result, records)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("samples: got %d", len(got))
	}
	if got[0].PowerOutput != 300 || got[1].EngineTemperature != 80.1 {
		t.Errorf("samples round trip: %+v", got)
	}
}

func TestListSkipsDamagedRuns(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	result, records := sampleResult()
	if _, err := store.Save("good", 0.5, 600, 0, result, records); err != nil {
		t.Fatal(err)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("runs: got %d want 1", len(runs))
	}
}

func TestListEmptyBaseDir(t *testing.T) {
	store := New("/nonexistent/dieselops-test")
	runs, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestExportJSON(t *testing.T) {
	result, records := sampleResult()

	var buf bytes.Buffer
	if err := ExportJSON(&buf, "baseload", 0.5, 600, result, records); err != nil {
		t.Fatalf("export: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if data.Label != "baseload" || data.Steps != 2 {
		t.Errorf("export header: %+v", data)
	}
	if len(data.Samples) != 2 || data.Samples[1].PowerOutput != 310 {
		t.Errorf("export samples: %+v", data.Samples)
	}
}

func TestExportCSV(t *testing.T) {
	_, records := sampleResult()

	var buf bytes.Buffer
	if err := ExportCSV(&buf, records); err != nil {
		t.Fatalf("export: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines: got %d want header+2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "time,fuel_injection_rate") {
		t.Errorf("header: %q", lines[0])
	}
}
