// Package control provides the feedback controllers that regulate the
// simulated plant:
//
//   - [PID]: single-loop proportional-integral-derivative controller with
//     output clamping, anti-windup and a bounded sample history
//   - [Cascade]: two chained PIDs where the primary loop's output becomes
//     the secondary loop's setpoint
//
// # Usage
//
//	pid := control.NewPID(2.0, 0.1, 0.5, 0, 100)
//	out := pid.Update(setpoint, measurement, dt)
//
// Controllers never return errors: dt is floored instead of rejected and
// gains are applied as given. Validating gain ranges is the configuration
// layer's job.
package control
