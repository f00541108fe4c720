package stage

import (
	"fmt"

	"github.com/dhvanilabs/sadhana/pkg/chant"
)

// StageLockedError reports a progression violation and names the first
// unmet prerequisite. Session state is unchanged when it is returned.
type StageLockedError struct {
	Stage        chant.Stage
	Prerequisite chant.Stage
}

func (e StageLockedError) Error() string {
	return fmt.Sprintf("stage %s is locked: complete %s first", e.Stage, e.Prerequisite)
}

// UnknownStageError reports a stage name outside the practice order.
type UnknownStageError struct {
	Stage string
}

func (e UnknownStageError) Error() string {
	return "unknown stage: " + e.Stage
}

// NotScoreableError reports an attempt to record a result for an
// acknowledge-only stage.
type NotScoreableError struct {
	Stage chant.Stage
}

func (e NotScoreableError) Error() string {
	return fmt.Sprintf("stage %s is acknowledge-only and takes no result", e.Stage)
}

// NotAcknowledgeableError reports an attempt to acknowledge a scored stage.
type NotAcknowledgeableError struct {
	Stage chant.Stage
}

func (e NotAcknowledgeableError) Error() string {
	return fmt.Sprintf("stage %s requires a scored result", e.Stage)
}
