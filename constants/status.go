package constants

// RunStatus is the canonical status for rows in runs.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusRunning   RunStatus = "RUNNING"   // in progress
	RunStatusCompleted RunStatus = "COMPLETED" // every page processed
	RunStatusPartial   RunStatus = "PARTIAL"   // finished, but one or more pages failed
	RunStatusFailed    RunStatus = "FAILED"    // terminal failure before any output
)
