package domain

// Snapshot is the complete state of tasks, points and rewards at one instant.
// It is the unit of change notification and persistence. Version increases by
// one on every mutation and orders saves (last write wins).
type Snapshot struct {
	Version     int64    `json:"version"`
	Tasks       []Task   `json:"tasks"`
	TotalPoints int      `json:"total_points"`
	Rewards     []Reward `json:"rewards"`
	Quote       string   `json:"quote,omitempty"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Tasks = make([]Task, len(s.Tasks))
	for i, t := range s.Tasks {
		c.Tasks[i] = t.Clone()
	}
	c.Rewards = CloneRewards(s.Rewards)
	return c
}

// Task returns the task with the given ID.
func (s Snapshot) Task(id string) (Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// UnlockedCount returns how many rewards are unlocked.
func (s Snapshot) UnlockedCount() int {
	n := 0
	for _, r := range s.Rewards {
		if r.Unlocked {
			n++
		}
	}
	return n
}
