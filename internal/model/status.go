package model

// UnitStatus represents the lifecycle state of a retrieval unit
type UnitStatus string

const (
	// UnitStatusPending means the unit is queued but not dispatched
	UnitStatusPending UnitStatus = "pending"

	// UnitStatusDownloading means extraction or transfer is in progress
	UnitStatusDownloading UnitStatus = "downloading"

	// UnitStatusProcessing means the transfer finished and post-processing runs
	UnitStatusProcessing UnitStatus = "processing"

	// UnitStatusCompleted means the unit finished successfully
	UnitStatusCompleted UnitStatus = "completed"

	// UnitStatusError means extraction or transfer failed
	UnitStatusError UnitStatus = "error"

	// UnitStatusSkipped means a filter or duplicate check rejected the unit
	UnitStatusSkipped UnitStatus = "skipped"
)

// String returns the string representation of UnitStatus
func (s UnitStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the unit has settled
func (s UnitStatus) IsTerminal() bool {
	return s == UnitStatusCompleted || s == UnitStatusError || s == UnitStatusSkipped
}

// IsActive reports whether work is currently happening for the unit
func (s UnitStatus) IsActive() bool {
	return s == UnitStatusDownloading || s == UnitStatusProcessing
}

// JobStatus represents the lifecycle state of a job
type JobStatus string

const (
	// JobStatusPending means the job was created but not started
	JobStatusPending JobStatus = "pending"

	// JobStatusRunning means units are being driven to completion
	JobStatusRunning JobStatus = "running"

	// JobStatusCompleted means every unit reached a terminal state
	JobStatusCompleted JobStatus = "completed"

	// JobStatusCancelled means the job was cancelled while running
	JobStatusCancelled JobStatus = "cancelled"
)

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the job can no longer change state
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}
