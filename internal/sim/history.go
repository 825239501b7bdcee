package sim

// Snapshot is one recorded view of an agent's named state.
type Snapshot map[string]any

// History is the append-only log of state snapshots kept by every agent.
// One snapshot is appended per mutation call; the log is never truncated, so
// its length always equals the number of mutations since creation.
type History struct {
	snaps []Snapshot
}

// Record appends a snapshot. The caller passes the full current state; the
// map is stored as given and must not be mutated afterwards.
func (h *History) Record(s Snapshot) {
	h.snaps = append(h.snaps, s)
}

// Len returns the number of recorded mutations.
func (h *History) Len() int {
	return len(h.snaps)
}

// At returns the i-th snapshot (0 = oldest).
func (h *History) At(i int) Snapshot {
	return h.snaps[i]
}

// Latest returns the most recent snapshot, or nil before any mutation.
func (h *History) Latest() Snapshot {
	if len(h.snaps) == 0 {
		return nil
	}
	return h.snaps[len(h.snaps)-1]
}
