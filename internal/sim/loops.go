package sim

import "fmt"

// Loop identifies one of the three physical control loops.
type Loop int

const (
	// LoopTemperature regulates engine temperature via cooling power.
	LoopTemperature Loop = iota
	// LoopPower regulates generated power via fuel injection rate.
	LoopPower
	// LoopEfficiency regulates thermal efficiency via generator excitation.
	LoopEfficiency

	numLoops
)

func (l Loop) String() string {
	switch l {
	case LoopTemperature:
		return "temperature"
	case LoopPower:
		return "power"
	case LoopEfficiency:
		return "efficiency"
	}
	return fmt.Sprintf("loop(%d)", int(l))
}

// ParseLoop maps a loop name to its identifier.
func ParseLoop(name string) (Loop, error) {
	switch name {
	case "temperature", "temp":
		return LoopTemperature, nil
	case "power":
		return LoopPower, nil
	case "efficiency", "eff":
		return LoopEfficiency, nil
	}
	return 0, fmt.Errorf("unknown loop: %s", name)
}

// Mode is the authoritative control source for a loop at a given instant.
// Exactly one mode is in effect per loop.
type Mode int

const (
	ModeManual Mode = iota
	ModeAuto
	ModeCascade
)

func (m Mode) String() string {
	switch m {
	case ModeManual:
		return "manual"
	case ModeAuto:
		return "auto"
	case ModeCascade:
		return "cascade"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ResumePolicy selects what happens to the per-loop mode selection when
// emergency mode is cleared.
type ResumePolicy int

const (
	// ResumeManual leaves every loop in manual after an emergency.
	ResumeManual ResumePolicy = iota
	// ResumeRestore restores the loop selection that was active when the
	// emergency was triggered.
	ResumeRestore
)

// ParseResumePolicy maps a policy name to its identifier.
func ParseResumePolicy(name string) (ResumePolicy, error) {
	switch name {
	case "manual", "":
		return ResumeManual, nil
	case "restore":
		return ResumeRestore, nil
	}
	return 0, fmt.Errorf("unknown resume policy: %s", name)
}
