package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure, storage I/O)
	ExitConfigError = 2 // Configuration error (bad config file, unknown key, schema migration)
	ExitDataError   = 3 // Data error (unparseable or duplicate citation)
	ExitNotFound    = 4 // No paper with the given id
)
