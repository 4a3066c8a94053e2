// Package sim orchestrates the plant simulation: it owns the plant state,
// the per-loop controllers and the cascade, and advances everything one
// tick at a time.
//
// Each [Simulator.Update] tick arbitrates, per physical loop, between
// manual input, single-loop PID and cascade control, with a global
// emergency override that preempts all of them. The tick then feeds the
// chosen actuator values through the plant model, rebuilds alerts, and
// samples the sliding-window histories once per whole simulated second.
//
// # Thread safety
//
// The core is single-threaded by design: Update and the setters mutate
// shared accumulators without locks. A concurrent host must serialize all
// calls, e.g. by confining the simulator to one goroutine and passing
// commands over a channel.
package sim
