package components

import (
	"fmt"
	"slices"
)

// AgeStage is the active state of the Age region.
type AgeStage uint8

const (
	AgeSeed AgeStage = iota
	AgeBaby
	AgeAdult
)

// ConditionStage is the active state of the Condition region.
type ConditionStage uint8

const (
	ConditionCheck ConditionStage = iota // Transient, resolved at spawn
	ConditionAlive
	ConditionDead
)

// FloweringStage is the active state of the Flowering region.
type FloweringStage uint8

const (
	FloweringCheck FloweringStage = iota // Transient, resolved at spawn
	FloweringStopped
	FloweringNone
	FloweringBlooming
	FloweringSenescence
)

// FloweringStatus is the renderer-facing bloom status.
type FloweringStatus string

const (
	StatusUnset      FloweringStatus = ""
	StatusNone       FloweringStatus = "none"
	StatusBlooming   FloweringStatus = "blooming"
	StatusSenescence FloweringStatus = "senescence"
)

// Meta is the union of the metadata exposed by every active region state.
// Each field is contributed by at most one region.
type Meta struct {
	ScaleFactor      float64         `json:"scale_factor,omitempty"`
	FloweringVisible bool            `json:"flowering_visible"`
	FloweringStatus  FloweringStatus `json:"flowering_status,omitempty"`
}

// Scales maps age stages to render scale multipliers.
type Scales struct {
	Seed, Baby, Adult float64
}

// Meta returns the age state's metadata.
func (s AgeStage) Meta(sc Scales) Meta {
	switch s {
	case AgeSeed:
		return Meta{ScaleFactor: sc.Seed}
	case AgeBaby:
		return Meta{ScaleFactor: sc.Baby}
	case AgeAdult:
		return Meta{ScaleFactor: sc.Adult}
	}
	return Meta{}
}

// Meta returns the flowering state's metadata. Check and stopped expose none.
func (s FloweringStage) Meta() Meta {
	switch s {
	case FloweringNone:
		return Meta{FloweringVisible: false, FloweringStatus: StatusNone}
	case FloweringBlooming:
		return Meta{FloweringVisible: true, FloweringStatus: StatusBlooming}
	case FloweringSenescence:
		return Meta{FloweringVisible: true, FloweringStatus: StatusSenescence}
	}
	return Meta{}
}

// Merge overlays the non-zero fields of o onto m.
func (m Meta) Merge(o Meta) Meta {
	if o.ScaleFactor != 0 {
		m.ScaleFactor = o.ScaleFactor
	}
	if o.FloweringStatus != StatusUnset {
		m.FloweringVisible = o.FloweringVisible
		m.FloweringStatus = o.FloweringStatus
	}
	return m
}

// String returns the state name.
func (s AgeStage) String() string {
	names := AgeStageNames()
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// AgeStageNames returns the names of all age stages in constant order.
func AgeStageNames() []string {
	return []string{"seed", "baby", "adult"}
}

// String returns the state name.
func (s ConditionStage) String() string {
	names := ConditionStageNames()
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// ConditionStageNames returns the names of all condition stages in constant order.
func ConditionStageNames() []string {
	return []string{"check", "alive", "dead"}
}

// String returns the state name.
func (s FloweringStage) String() string {
	names := FloweringStageNames()
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// FloweringStageNames returns the names of all flowering stages in constant order.
func FloweringStageNames() []string {
	return []string{"check", "stopped", "none", "blooming", "senescence"}
}

// MarshalText lets stages appear by name in JSON snapshots.
func (s AgeStage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// MarshalText lets stages appear by name in JSON snapshots.
func (s ConditionStage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// MarshalText lets stages appear by name in JSON snapshots.
func (s FloweringStage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText parses a stage name written by MarshalText.
func (s *AgeStage) UnmarshalText(text []byte) error {
	i, err := parseStage(AgeStageNames(), text)
	*s = AgeStage(i)
	return err
}

// UnmarshalText parses a stage name written by MarshalText.
func (s *ConditionStage) UnmarshalText(text []byte) error {
	i, err := parseStage(ConditionStageNames(), text)
	*s = ConditionStage(i)
	return err
}

// UnmarshalText parses a stage name written by MarshalText.
func (s *FloweringStage) UnmarshalText(text []byte) error {
	i, err := parseStage(FloweringStageNames(), text)
	*s = FloweringStage(i)
	return err
}

func parseStage(names []string, text []byte) (int, error) {
	i := slices.Index(names, string(text))
	if i < 0 {
		return 0, fmt.Errorf("unknown stage %q", text)
	}
	return i, nil
}
