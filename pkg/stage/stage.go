// Package stage governs the ordered practice flow:
// listen → guided → call_response → recap → independent.
//
// Entering a stage requires every earlier stage to be done. Completed stages
// may be re-entered for replay practice; a re-run overwrites that stage's
// result without disturbing later completions. listen and recap are
// acknowledge-only; the scored stages require a StageResult to complete.
package stage

import (
	"github.com/dhvanilabs/sadhana/pkg/chant"
)

// Machine tracks per-stage completion and the latest result for one session.
// It is owned by a single session and is not safe for concurrent use; the
// session layer serializes access per session id.
type Machine struct {
	done    map[chant.Stage]bool
	results map[chant.Stage]chant.StageResult
}

// NewMachine creates a machine with no stage entered.
func NewMachine() *Machine {
	return &Machine{
		done:    make(map[chant.Stage]bool),
		results: make(map[chant.Stage]chant.StageResult),
	}
}

// Gate verifies that s may be entered now. Unknown stages fail with
// UnknownStageError; skipping ahead fails with StageLockedError naming the
// first unmet prerequisite. Re-entering a completed stage is always allowed.
func (m *Machine) Gate(s chant.Stage) error {
	idx := indexOf(s)
	if idx < 0 {
		return UnknownStageError{Stage: string(s)}
	}

	for _, prerequisite := range chant.Stages[:idx] {
		if !m.done[prerequisite] {
			return StageLockedError{Stage: s, Prerequisite: prerequisite}
		}
	}
	return nil
}

// Acknowledge marks an acknowledge-only stage done. Scored stages must go
// through Complete instead.
func (m *Machine) Acknowledge(s chant.Stage) error {
	if err := m.Gate(s); err != nil {
		return err
	}
	if s.Scoreable() {
		return NotAcknowledgeableError{Stage: s}
	}

	m.done[s] = true
	return nil
}

// Complete records a stage result and marks the stage done. A repeat of an
// already-done stage supersedes the stored result; completions of later
// stages are untouched.
func (m *Machine) Complete(s chant.Stage, result chant.StageResult) error {
	if err := m.Gate(s); err != nil {
		return err
	}
	if !s.Scoreable() {
		return NotScoreableError{Stage: s}
	}

	m.results[s] = result
	m.done[s] = true
	return nil
}

// Done reports whether the stage has been completed or acknowledged.
func (m *Machine) Done(s chant.Stage) bool {
	return m.done[s]
}

// Result returns the latest recorded result for a scored stage.
func (m *Machine) Result(s chant.Stage) (chant.StageResult, bool) {
	result, ok := m.results[s]
	return result, ok
}

// Results returns a copy of the latest result per completed scored stage.
func (m *Machine) Results() map[chant.Stage]chant.StageResult {
	out := make(map[chant.Stage]chant.StageResult, len(m.results))
	for s, r := range m.results {
		out[s] = r
	}
	return out
}

// Finalizable reports whether the terminal stage is done, making the
// session eligible for finalize.
func (m *Machine) Finalizable() bool {
	return m.done[chant.StageIndependent]
}

func indexOf(s chant.Stage) int {
	for i, stage := range chant.Stages {
		if s == stage {
			return i
		}
	}
	return -1
}
