package domain

// Outcome is the result of handling a single URL.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
	OutcomeQueued    Outcome = "queued" // persisted for a later processor pass
)

// Done reports whether a queue entry with this outcome can be dropped from the queue.
func (o Outcome) Done() bool {
	return o == OutcomeCompleted || o == OutcomeSkipped
}

type TransferMode int

const (
	Background TransferMode = iota
	Foreground
)

func (m TransferMode) String() string {
	if m == Foreground {
		return "foreground"
	}
	return "background"
}

type QueueMode int

const (
	QueueOff QueueMode = iota
	QueueOn
)

// FetchOptions are passed per call instead of being held as shared state.
type FetchOptions struct {
	Mode  TransferMode
	Queue QueueMode
}

// TransferRequest is what the orchestrator hands to a transfer agent.
type TransferRequest struct {
	URL  string
	Dest string
	Mode TransferMode
}
