package txn

// Handle names one in-flight transaction on the package service. It is valid
// only while that transaction runs and is never persisted.
type Handle struct {
	Address string
}

// Outcome is the terminal state of a transaction. The set of implementations
// is closed: Succeeded, Failed, and AlreadyCompleted.
type Outcome interface {
	isOutcome()
}

// Succeeded reports that the service finished the transaction successfully.
type Succeeded struct{}

// Failed reports a service-side failure. Reason is the service's message, verbatim.
type Failed struct {
	Reason string
}

// AlreadyCompleted reports that the transaction had already finished
// successfully before the client attached to its completion channel.
type AlreadyCompleted struct{}

func (Succeeded) isOutcome()        {}
func (Failed) isOutcome()           {}
func (AlreadyCompleted) isOutcome() {}

// Progress is one in-flight status message from the service.
// Percent is negative when the service did not report a percentage.
type Progress struct {
	Message string
	Percent int
}

// ProgressFunc receives progress messages in the order the service emits them.
type ProgressFunc func(Progress)
