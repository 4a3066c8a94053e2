package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"

	"github.com/kmishmael/dieselops/internal/sim"
)

// ExportData is the JSON export of a run: configuration summary, sample
// rows and final metrics.
type ExportData struct {
	Label    string             `json:"label"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Steps    int                `json:"steps"`
	Samples  []exportSample     `json:"samples"`
	Metrics  map[string]float64 `json:"metrics"`
	Final    sim.Snapshot       `json:"final"`
}

type exportSample struct {
	Time              float64 `json:"time"`
	PowerOutput       float64 `json:"powerOutput"`
	EngineTemperature float64 `json:"engineTemperature"`
	Efficiency        float64 `json:"efficiency"`
	FuelConsumption   float64 `json:"fuelConsumption"`
	NOx               float64 `json:"nox"`
}

// ExportJSON writes a run as indented JSON.
func ExportJSON(w io.Writer, label string, dt, duration float64, result *sim.RunResult, records []Record) error {
	samples := make([]exportSample, len(records))
	for i, r := range records {
		samples[i] = exportSample{
			Time:              r.Time,
			PowerOutput:       r.PowerOutput,
			EngineTemperature: r.EngineTemperature,
			Efficiency:        r.Efficiency,
			FuelConsumption:   r.FuelConsumption,
			NOx:               r.NOx,
		}
	}

	data := ExportData{
		Label:    label,
		Dt:       dt,
		Duration: duration,
		Steps:    result.StepsTaken,
		Samples:  samples,
		Metrics:  result.Metrics,
		Final:    result.Final,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportJSONFile writes the JSON export to a file, or stdout when path is
// empty.
func ExportJSONFile(path, label string, dt, duration float64, result *sim.RunResult, records []Record) error {
	if path == "" {
		return ExportJSON(os.Stdout, label, dt, duration, result, records)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, label, dt, duration, result, records)
}

// ExportCSV writes sample rows as CSV.
func ExportCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sampleHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(rec.row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSVFile writes the CSV export to a file, or stdout when path is
// empty.
func ExportCSVFile(path string, records []Record) error {
	if path == "" {
		return ExportCSV(os.Stdout, records)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportCSV(file, records)
}
