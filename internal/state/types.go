package state

// Record is the persisted progress of one wallet.
type Record struct {
	// Tasks lists completed task ids in completion order. Ids are never removed.
	Tasks []string `json:"tasks"`
}

// has reports whether taskID is already recorded.
func (r *Record) has(taskID string) bool {
	for _, id := range r.Tasks {
		if id == taskID {
			return true
		}
	}
	return false
}
