package batch

// Failure describes one operation that did not apply.
type Failure struct {
	Kind string `json:"kind"`
	Key  string `json:"key"`
	Err  string `json:"error"`
}

// Tally accumulates the result of a batch. Skipped operations are also
// counted in OK.
type Tally struct {
	OK       int            `json:"ok"`
	Fail     int            `json:"fail"`
	Skipped  int            `json:"skipped"`
	ByKind   map[string]int `json:"byKind,omitempty"`
	Failures []Failure      `json:"failures,omitempty"`
}

func NewTally() Tally {
	return Tally{ByKind: make(map[string]int)}
}

// Total is the number of operations attempted.
func (t Tally) Total() int {
	return t.OK + t.Fail
}

// Add returns the sum of t and other.
func (t Tally) Add(other Tally) Tally {
	sum := Tally{
		OK:      t.OK + other.OK,
		Fail:    t.Fail + other.Fail,
		Skipped: t.Skipped + other.Skipped,
		ByKind:  make(map[string]int, len(t.ByKind)+len(other.ByKind)),
	}
	for k, v := range t.ByKind {
		sum.ByKind[k] += v
	}
	for k, v := range other.ByKind {
		sum.ByKind[k] += v
	}
	sum.Failures = append(sum.Failures, t.Failures...)
	sum.Failures = append(sum.Failures, other.Failures...)
	return sum
}

func (t *Tally) recordSuccess(outcome Outcome) {
	t.OK++
	if outcome.Skipped {
		t.Skipped++
	}
	if t.ByKind == nil {
		t.ByKind = make(map[string]int)
	}
	t.ByKind[outcome.Kind]++
}

func (t *Tally) recordFailure(outcome Outcome, err error) {
	t.Fail++
	t.Failures = append(t.Failures, Failure{
		Kind: outcome.Kind,
		Key:  outcome.Key,
		Err:  err.Error(),
	})
}
