package telemetry

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kmishmael/dieselops/internal/sim"
)

// Metrics exposes the live plant and controller state as Prometheus
// gauges.
type Metrics struct {
	PowerOutput       prometheus.Gauge
	EngineTemperature prometheus.Gauge
	Efficiency        prometheus.Gauge
	FuelConsumption   prometheus.Gauge
	Emissions         *prometheus.GaugeVec

	Actuators *prometheus.GaugeVec
	Targets   *prometheus.GaugeVec
	LoopMode  *prometheus.GaugeVec

	Emergency    prometheus.Gauge
	ActiveAlerts prometheus.Gauge
	TicksTotal   prometheus.Counter
}

// NewMetrics builds and registers the gauge set on the given registry;
// nil uses the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		PowerOutput: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dieselops_power_output_mw",
			Help: "Generated power in MW",
		}),
		EngineTemperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dieselops_engine_temperature_celsius",
			Help: "Engine temperature in Celsius",
		}),
		Efficiency: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dieselops_efficiency_percent",
			Help: "Thermal efficiency percentage",
		}),
		FuelConsumption: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dieselops_fuel_consumption_lph",
			Help: "Fuel consumption rate in L/h",
		}),
		Emissions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dieselops_emissions_kgph",
			Help: "Emission rate in kg/h by species",
		}, []string{"species"}),
		Actuators: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dieselops_actuator_percent",
			Help: "Actuator setting 0-100",
		}, []string{"actuator"}),
		Targets: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dieselops_loop_target",
			Help: "Control loop setpoint in the loop's unit",
		}, []string{"loop"}),
		LoopMode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dieselops_loop_mode",
			Help: "Active control mode per loop (1=active)",
		}, []string{"loop", "mode"}),
		Emergency: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dieselops_emergency_mode",
			Help: "Emergency override status (1=active)",
		}),
		ActiveAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dieselops_active_alerts",
			Help: "Number of active advisory alerts",
		}),
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dieselops_ticks_total",
			Help: "Simulation ticks processed",
		}),
	}

	reg.MustRegister(
		m.PowerOutput, m.EngineTemperature, m.Efficiency,
		m.FuelConsumption, m.Emissions, m.Actuators, m.Targets,
		m.LoopMode, m.Emergency, m.ActiveAlerts, m.TicksTotal,
	)
	return m
}

// Publish pushes one snapshot onto the gauges.
func (m *Metrics) Publish(snap sim.Snapshot) {
	p := snap.Plant
	m.PowerOutput.Set(p.PowerOutput)
	m.EngineTemperature.Set(p.EngineTemperature)
	m.Efficiency.Set(p.Efficiency)
	m.FuelConsumption.Set(p.FuelConsumption)

	m.Emissions.WithLabelValues("co2").Set(p.Emissions.CO2)
	m.Emissions.WithLabelValues("nox").Set(p.Emissions.NOx)
	m.Emissions.WithLabelValues("particulates").Set(p.Emissions.Particulates)

	m.Actuators.WithLabelValues("fuel").Set(p.FuelInjectionRate)
	m.Actuators.WithLabelValues("cooling").Set(p.CoolingSystemPower)
	m.Actuators.WithLabelValues("excitation").Set(p.GeneratorExcitation)
	m.Actuators.WithLabelValues("load").Set(p.Load)

	for loop, target := range snap.Targets {
		m.Targets.WithLabelValues(loop).Set(target)
	}
	for loop, mode := range snap.Modes {
		for _, candidate := range []string{"manual", "auto", "cascade"} {
			v := 0.0
			if mode == candidate {
				v = 1.0
			}
			m.LoopMode.WithLabelValues(loop, candidate).Set(v)
		}
	}

	if snap.Emergency {
		m.Emergency.Set(1)
	} else {
		m.Emergency.Set(0)
	}
	m.ActiveAlerts.Set(float64(len(snap.Alerts)))
	m.TicksTotal.Inc()
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
}

// Handler returns the HTTP mux serving /metrics and /health.
func Handler(reg *prometheus.Registry) http.Handler {
	start := time.Now()
	mux := http.NewServeMux()

	if reg != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	} else {
		mux.Handle("/metrics", promhttp.Handler())
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
			Uptime:    time.Since(start).String(),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("health response: %v", err)
		}
	})

	return mux
}

// Serve starts the telemetry HTTP server in the background.
func Serve(port int, handler http.Handler) {
	go func() {
		addr := fmt.Sprintf(":%d", port)
		log.Printf("telemetry listening on %s", addr)
		if err := http.ListenAndServe(addr, handler); err != nil {
			log.Printf("telemetry server: %v", err)
		}
	}()
}
