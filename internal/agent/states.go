package agent

import (
	"errors"

	"github.com/xkilldash9x/webpilot/api/schemas"
)

// LoopState is the phase of a sampling loop.
type LoopState string

const (
	StateInit          LoopState = "INIT"
	StateAwaitingModel LoopState = "AWAITING_MODEL"
	StateDispatching   LoopState = "DISPATCHING"
	StateTerminated    LoopState = "TERMINATED"
)

// Outcome describes why a loop stopped.
type Outcome string

const (
	// OutcomeFinished means the model declared the task complete.
	OutcomeFinished Outcome = "finished"
	// OutcomeCallUser means the model handed control back to the user.
	OutcomeCallUser Outcome = "call_user"
	// OutcomeTurnLimit means the configured turn budget ran out.
	OutcomeTurnLimit Outcome = "turn_limit"
	// OutcomeFailed means the loop returned an error.
	OutcomeFailed Outcome = "failed"
)

// Result is what a loop run returns.
type Result struct {
	Outcome Outcome
	// Content is the final message: the finished/call_user content for the
	// text loop, the last assistant text for the tool loop.
	Content string
	// Turns counts model round-trips.
	Turns int
	// Transcript is the full transcript with image retention applied.
	Transcript []schemas.Entry
}

// ErrEmptyInstruction is returned when a run is started without an instruction.
var ErrEmptyInstruction = errors.New("agent: instruction must not be empty")
