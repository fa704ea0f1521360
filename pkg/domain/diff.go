package domain

// StatusDiff represents the changes between two status snapshots.
// The frame counter is deliberately not part of the diff: it changes every frame.
type StatusDiff struct {
	State                   *string `json:"state,omitempty"`
	IGMode                  *string `json:"ig_mode,omitempty"`
	CommandedIGMode         *string `json:"commanded_ig_mode,omitempty"`
	LoadedDatabaseNumber    *int8   `json:"loaded_database_number,omitempty"`
	ReportedDatabaseNumber  *int8   `json:"reported_database_number,omitempty"`
	CommandedDatabaseNumber *int8   `json:"commanded_database_number,omitempty"`
}

// Diff calculates the difference between oldStatus and newStatus.
// If oldStatus is nil, every field of newStatus is reported.
// Returns nil when nothing changed.
func Diff(oldStatus, newStatus *Status) *StatusDiff {
	if newStatus == nil {
		return nil
	}

	diff := &StatusDiff{}
	if oldStatus == nil || oldStatus.State != newStatus.State {
		diff.State = &newStatus.State
	}
	if oldStatus == nil || oldStatus.IGMode != newStatus.IGMode {
		diff.IGMode = &newStatus.IGMode
	}
	if oldStatus == nil || oldStatus.CommandedIGMode != newStatus.CommandedIGMode {
		diff.CommandedIGMode = &newStatus.CommandedIGMode
	}
	if oldStatus == nil || oldStatus.LoadedDatabaseNumber != newStatus.LoadedDatabaseNumber {
		diff.LoadedDatabaseNumber = &newStatus.LoadedDatabaseNumber
	}
	if oldStatus == nil || oldStatus.ReportedDatabaseNumber != newStatus.ReportedDatabaseNumber {
		diff.ReportedDatabaseNumber = &newStatus.ReportedDatabaseNumber
	}
	if oldStatus == nil || oldStatus.CommandedDatabaseNumber != newStatus.CommandedDatabaseNumber {
		diff.CommandedDatabaseNumber = &newStatus.CommandedDatabaseNumber
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StatusDiff) IsEmpty() bool {
	return d.State == nil &&
		d.IGMode == nil &&
		d.CommandedIGMode == nil &&
		d.LoadedDatabaseNumber == nil &&
		d.ReportedDatabaseNumber == nil &&
		d.CommandedDatabaseNumber == nil
}
