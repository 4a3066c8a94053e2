package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kmishmael/dieselops/internal/plant"
	"github.com/kmishmael/dieselops/internal/sim"
)

func testSnapshot() sim.Snapshot {
	return sim.Snapshot{
		Plant: plant.State{
			PowerOutput:       312.5,
			EngineTemperature: 81.2,
			Efficiency:        39.4,
			FuelConsumption:   920,
			FuelInjectionRate: 62,
			Emissions:         plant.Emissions{CO2: 1500, NOx: 45, Particulates: 6},
		},
		Modes:   map[string]string{"power": "auto", "temperature": "cascade", "efficiency": "manual"},
		Targets: map[string]float64{"power": 300, "temperature": 80, "efficiency": 40},
		Alerts:  []string{"low efficiency: 19.0%"},
	}
}

func TestPublishSetsGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.Publish(testSnapshot())

	if got := testutil.ToFloat64(m.PowerOutput); got != 312.5 {
		t.Errorf("power gauge: got %f", got)
	}
	if got := testutil.ToFloat64(m.EngineTemperature); got != 81.2 {
		t.Errorf("temperature gauge: got %f", got)
	}
	if got := testutil.ToFloat64(m.Emissions.WithLabelValues("nox")); got != 45 {
		t.Errorf("nox gauge: got %f", got)
	}
	if got := testutil.ToFloat64(m.LoopMode.WithLabelValues("power", "auto")); got != 1 {
		t.Errorf("power auto mode gauge: got %f", got)
	}
	if got := testutil.ToFloat64(m.LoopMode.WithLabelValues("power", "manual")); got != 0 {
		t.Errorf("power manual mode gauge: got %f", got)
	}
	if got := testutil.ToFloat64(m.ActiveAlerts); got != 1 {
		t.Errorf("alerts gauge: got %f", got)
	}
	if got := testutil.ToFloat64(m.Emergency); got != 0 {
		t.Errorf("emergency gauge: got %f", got)
	}
}

func TestEmergencyGaugeTracksState(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	snap := testSnapshot()
	snap.Emergency = true
	m.Publish(snap)
	if got := testutil.ToFloat64(m.Emergency); got != 1 {
		t.Errorf("emergency gauge: got %f", got)
	}

	snap.Emergency = false
	m.Publish(snap)
	if got := testutil.ToFloat64(m.Emergency); got != 0 {
		t.Errorf("emergency gauge after clear: got %f", got)
	}
	if got := testutil.ToFloat64(m.TicksTotal); got != 2 {
		t.Errorf("tick counter: got %f", got)
	}
}

func TestHandlerServesMetricsAndHealth(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.Publish(testSnapshot())

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status: %d", resp.StatusCode)
	}

	health, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	defer health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Errorf("health status: %d", health.StatusCode)
	}
	if ct := health.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("health content type: %q", ct)
	}
}
