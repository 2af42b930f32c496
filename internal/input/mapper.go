package input

// Action is a control the vehicle understands.
type Action int

const (
	ActionThrottleUp Action = iota
	ActionThrottleDown
	ActionThrottleCut
	ActionThrottleFull
	ActionRollLeft
	ActionRollRight
	ActionPitchDown
	ActionPitchUp
	ActionYawLeft
	ActionYawRight
	ActionBrake
	ActionReset
	ActionBoost
	ActionHelp
)

// Bindings maps each action to the keys that trigger it.
type Bindings map[Action][]Key

// DefaultBindings returns the stock keyboard layout.
func DefaultBindings() Bindings {
	return Bindings{
		ActionThrottleUp:   {"w"},
		ActionThrottleDown: {"s"},
		ActionThrottleCut:  {"q"},
		ActionThrottleFull: {"e"},
		ActionRollLeft:     {"ArrowLeft"},
		ActionRollRight:    {"ArrowRight"},
		ActionPitchDown:    {"ArrowUp"},
		ActionPitchUp:      {"ArrowDown"},
		ActionYawLeft:      {"a"},
		ActionYawRight:     {"d"},
		ActionBrake:        {"f"},
		ActionReset:        {"r"},
		ActionBoost:        {"o"},
		ActionHelp:         {"h"},
	}
}

// ControlCommand is the discrete command for one frame.
type ControlCommand struct {
	// ThrottleDelta is -1, 0 or 1; it is scaled by the throttle rate and dt.
	ThrottleDelta int
	ThrottleCut   bool
	ThrottleFull  bool

	Roll  int
	Pitch int
	Yaw   int

	Brake bool
	Reset bool
	Boost bool
	Help  bool
}

// Mapper converts held keys into a ControlCommand. Unknown keys are ignored.
type Mapper struct {
	bindings Bindings
}

// NewMapper creates a Mapper. A nil bindings map selects DefaultBindings.
func NewMapper(b Bindings) *Mapper {
	if b == nil {
		b = DefaultBindings()
	}
	return &Mapper{bindings: b}
}

func (m *Mapper) active(held KeySet, a Action) bool {
	for _, k := range m.bindings[a] {
		if held.Has(k) {
			return true
		}
	}
	return false
}

// axis returns +1, -1 or 0; opposing inputs cancel.
func (m *Mapper) axis(held KeySet, pos, neg Action) int {
	v := 0
	if m.active(held, pos) {
		v++
	}
	if m.active(held, neg) {
		v--
	}
	return v
}

// Map builds the frame's command from the held set.
func (m *Mapper) Map(held KeySet) ControlCommand {
	return ControlCommand{
		ThrottleDelta: m.axis(held, ActionThrottleUp, ActionThrottleDown),
		ThrottleCut:   m.active(held, ActionThrottleCut),
		ThrottleFull:  m.active(held, ActionThrottleFull),
		Roll:          m.axis(held, ActionRollLeft, ActionRollRight),
		Pitch:         m.axis(held, ActionPitchUp, ActionPitchDown),
		Yaw:           m.axis(held, ActionYawLeft, ActionYawRight),
		Brake:         m.active(held, ActionBrake),
		Reset:         m.active(held, ActionReset),
		Boost:         m.active(held, ActionBoost),
		Help:          m.active(held, ActionHelp),
	}
}

// ApplyThrottle advances throttle by the command and clamps it to [0, 1].
// Cut wins over increments and full wins over cut.
func (c ControlCommand) ApplyThrottle(throttle, rate, dt float64) float64 {
	throttle += float64(c.ThrottleDelta) * rate * dt
	if c.ThrottleCut {
		throttle = 0
	}
	if c.ThrottleFull {
		throttle = 1
	}
	return min(max(throttle, 0), 1)
}
