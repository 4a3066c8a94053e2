// Package plant models the physical side of a diesel generation plant as a
// set of empirical, per-tick transfer functions.
//
//   - [State]: actuator settings and measured process variables for one plant
//   - [Model]: the process functions mapping actuators and the previous
//     tick's state to new measurements
//   - [Noise]: injectable bounded noise source; [NewUniform] for production,
//     [Zero] for deterministic tests
//
// The model is a deliberately simplified approximation tuned for plausible
// closed-loop behavior, not a certified physics engine. All functions treat
// actuator inputs as already-validated 0-100 percentages and never fail;
// the only hard floors are power/emissions at zero and temperature at
// ambient.
package plant
