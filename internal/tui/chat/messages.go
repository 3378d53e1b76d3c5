package chat

// replyMsg carries a successful reply back to the update loop.
type replyMsg struct {
	seq  uint64
	text string
}

// failedMsg carries a failed request back to the update loop.
type failedMsg struct {
	seq  uint64
	text string
	err  error
}
