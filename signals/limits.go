package signals

// Limits bounds how much of a mailbox is analyzed. A zero value for any
// field disables that cap. Limits are threaded explicitly into the grouping
// and selection stages so tests can vary bounds without process-wide state.
type Limits struct {
	// MaxContacts is the number of contacts kept after ranking by volume.
	MaxContacts int

	// MaxThreadsPerContact keeps only the most recently ended threads.
	MaxThreadsPerContact int

	// MaxMessagesPerThread truncates a thread to its oldest N messages.
	MaxMessagesPerThread int
}

// DefaultLimits returns the production bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxContacts:          50,
		MaxThreadsPerContact: 5,
		MaxMessagesPerThread: 20,
	}
}
