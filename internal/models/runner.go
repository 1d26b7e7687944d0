package models

// RunnerState is the schedule runner's state machine position.
type RunnerState string

const (
	RunnerStopped      RunnerState = "stopped"
	RunnerIdle         RunnerState = "idle"          // running, calendar has nothing due
	RunnerAwaitingSlot RunnerState = "awaiting_slot" // sleeping until the next due instant
	RunnerDispatching  RunnerState = "dispatching"   // one firing in progress
)

// RunnerStatus is the externally queryable runner snapshot.
type RunnerStatus struct {
	State      RunnerState `json:"state"`
	Running    bool        `json:"running"`
	NextFiring *SlotFiring `json:"next_firing,omitempty"` // set while awaiting a slot
}
