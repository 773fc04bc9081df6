package check

import (
	"bytes"
	"sort"
	"sync"

	"github.com/oisee/i8080/pkg/cpu"
)

// Mismatch is a sequence whose block-translated and single-step runs
// disagree.
type Mismatch struct {
	Code   []byte
	Vector int       // index into Vectors, -1 for an exhaustive sweep
	Input  cpu.State // set when Vector is -1
	Block  Outcome
	Single Outcome
}

// Report collects the results of a check run. It is safe for concurrent use.
type Report struct {
	mu         sync.Mutex
	mismatches []Mismatch
	behaviours map[string]struct{}
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{behaviours: make(map[string]struct{})}
}

// Add records a mismatch.
func (r *Report) Add(m Mismatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mismatches = append(r.mismatches, m)
}

// Observe records a sequence fingerprint.
func (r *Report) Observe(fp string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.behaviours[fp] = struct{}{}
}

// Mismatches returns a copy of all mismatches, shortest code first.
func (r *Report) Mismatches() []Mismatch {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]Mismatch, len(r.mismatches))
	copy(result, r.mismatches)
	sort.Slice(result, func(i, j int) bool {
		if len(result[i].Code) != len(result[j].Code) {
			return len(result[i].Code) < len(result[j].Code)
		}
		return bytes.Compare(result[i].Code, result[j].Code) < 0
	})
	return result
}

// Len returns the number of mismatches.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mismatches)
}

// Behaviours returns the number of distinct fingerprints observed.
func (r *Report) Behaviours() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.behaviours)
}
