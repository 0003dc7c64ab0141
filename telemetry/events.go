// Package telemetry provides garden statistics, event logs and snapshots.
package telemetry

// EventType identifies telemetry events.
type EventType string

const (
	EventSpawn    EventType = "spawn"
	EventBranch   EventType = "branch"
	EventBloom    EventType = "bloom"
	EventDeath    EventType = "death"
	EventPlant    EventType = "plant"
	EventSell     EventType = "sell"
	EventThrash   EventType = "thrash"
	EventGameOver EventType = "game_over"
)

// Event represents a single telemetry event.
type Event struct {
	TimeMs int64     `csv:"time_ms"`
	Type   EventType `csv:"type"`
	Entity uint32    `csv:"entity"`
	Cell   int       `csv:"cell"` // -1 when the segment has no owning cell

	// Optional fields depending on event type
	Parent    uint32 `csv:"parent"`     // branch events
	Level     int    `csv:"level"`      // spawn and death events
	GrowCount int    `csv:"grow_count"` // death events
	Amount    int    `csv:"amount"`     // money spent or credited
	Money     int    `csv:"money"`      // balance after the event
}

// NewSpawnEvent creates a segment spawn event.
func NewSpawnEvent(timeMs int64, entityID uint32, cell, level int) Event {
	return Event{
		TimeMs: timeMs,
		Type:   EventSpawn,
		Entity: entityID,
		Cell:   cell,
		Level:  level,
	}
}

// NewBranchEvent creates a branch event. The child is stored in Entity.
func NewBranchEvent(timeMs int64, parentID, childID uint32, cell int) Event {
	return Event{
		TimeMs: timeMs,
		Type:   EventBranch,
		Entity: childID,
		Cell:   cell,
		Parent: parentID,
	}
}

// NewBloomEvent creates a bloom event.
func NewBloomEvent(timeMs int64, entityID uint32, cell int) Event {
	return Event{
		TimeMs: timeMs,
		Type:   EventBloom,
		Entity: entityID,
		Cell:   cell,
	}
}

// NewDeathEvent creates a segment death event.
func NewDeathEvent(timeMs int64, entityID uint32, cell, level, growCount int) Event {
	return Event{
		TimeMs:    timeMs,
		Type:      EventDeath,
		Entity:    entityID,
		Cell:      cell,
		Level:     level,
		GrowCount: growCount,
	}
}

// NewPlantEvent creates a planting event.
func NewPlantEvent(timeMs int64, rootID uint32, cell, cost, money int) Event {
	return Event{
		TimeMs: timeMs,
		Type:   EventPlant,
		Entity: rootID,
		Cell:   cell,
		Amount: cost,
		Money:  money,
	}
}

// NewSellEvent creates a sell event.
func NewSellEvent(timeMs int64, rootID uint32, cell, credit, money int) Event {
	return Event{
		TimeMs: timeMs,
		Type:   EventSell,
		Entity: rootID,
		Cell:   cell,
		Amount: credit,
		Money:  money,
	}
}

// NewThrashEvent creates a thrash event.
func NewThrashEvent(timeMs int64, rootID uint32, cell, money int) Event {
	return Event{
		TimeMs: timeMs,
		Type:   EventThrash,
		Entity: rootID,
		Cell:   cell,
		Money:  money,
	}
}

// NewGameOverEvent creates a game over event.
func NewGameOverEvent(timeMs int64, money int) Event {
	return Event{
		TimeMs: timeMs,
		Type:   EventGameOver,
		Cell:   -1,
		Money:  money,
	}
}
