package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kmishmael/dieselops/internal/sim"
)

// Store persists completed runs under a base directory, one subdirectory
// per run: metadata.json plus samples.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes one persisted run.
type RunMetadata struct {
	ID        string             `json:"id"`
	Label     string             `json:"label"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Seed      int64              `json:"seed"`
	Metrics   map[string]float64 `json:"metrics"`
	Alerts    []string           `json:"alerts"`
}

// Record is one persisted sample row.
type Record struct {
	Time                float64
	FuelInjectionRate   float64
	CoolingSystemPower  float64
	GeneratorExcitation float64
	Load                float64
	MaintenanceStatus   float64
	EngineTemperature   float64
	PowerOutput         float64
	Efficiency          float64
	FuelConsumption     float64
	CO2                 float64
	NOx                 float64
	Particulates        float64
}

// RecordFrom flattens a snapshot into a sample row.
func RecordFrom(snap sim.Snapshot) Record {
	p := snap.Plant
	return Record{
		Time:                p.Time,
		FuelInjectionRate:   p.FuelInjectionRate,
		CoolingSystemPower:  p.CoolingSystemPower,
		GeneratorExcitation: p.GeneratorExcitation,
		Load:                p.Load,
		MaintenanceStatus:   p.MaintenanceStatus,
		EngineTemperature:   p.EngineTemperature,
		PowerOutput:         p.PowerOutput,
		Efficiency:          p.Efficiency,
		FuelConsumption:     p.FuelConsumption,
		CO2:                 p.Emissions.CO2,
		NOx:                 p.Emissions.NOx,
		Particulates:        p.Emissions.Particulates,
	}
}

var sampleHeader = []string{
	"time", "fuel_injection_rate", "cooling_system_power",
	"generator_excitation", "load", "maintenance_status",
	"engine_temperature", "power_output", "efficiency",
	"fuel_consumption", "co2", "nox", "particulates",
}

func (r Record) row() []string {
	vals := []float64{
		r.Time, r.FuelInjectionRate, r.CoolingSystemPower,
		r.GeneratorExcitation, r.Load, r.MaintenanceStatus,
		r.EngineTemperature, r.PowerOutput, r.Efficiency,
		r.FuelConsumption, r.CO2, r.NOx, r.Particulates,
	}
	row := make([]string, len(vals))
	for i, v := range vals {
		row[i] = strconv.FormatFloat(v, 'f', 6, 64)
	}
	return row
}

// Save writes a run directory and returns its ID.
func (s *Store) Save(label string, dt, duration float64, seed int64, result *sim.RunResult, records []Record) (string, error) {
	runID := fmt.Sprintf("%s_%d", label, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Label:     label,
		Timestamp: time.Now(),
		Dt:        dt,
		Duration:  duration,
		Seed:      seed,
		Metrics:   result.Metrics,
		Alerts:    result.Final.Alerts,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "samples.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(sampleHeader); err != nil {
		return "", err
	}
	for _, rec := range records {
		if err := w.Write(rec.row()); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List returns metadata for every readable run, skipping damaged entries.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSamples reads a run's sample rows back.
func (s *Store) LoadSamples(runID string) ([]Record, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "samples.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return []Record{}, nil
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(sampleHeader) {
			continue
		}
		vals := make([]float64, len(row))
		ok := true
		for i, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		records = append(records, Record{
			Time:                vals[0],
			FuelInjectionRate:   vals[1],
			CoolingSystemPower:  vals[2],
			GeneratorExcitation: vals[3],
			Load:                vals[4],
			MaintenanceStatus:   vals[5],
			EngineTemperature:   vals[6],
			PowerOutput:         vals[7],
			Efficiency:          vals[8],
			FuelConsumption:     vals[9],
			CO2:                 vals[10],
			NOx:                 vals[11],
			Particulates:        vals[12],
		})
	}
	return records, nil
}
