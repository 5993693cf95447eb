package notify

// Package notify publishes terminal download results to NATS so other
// processes can pick up finished files.
