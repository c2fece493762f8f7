package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no repository, bad config value)
	ExitDataError   = 3 // Data error (malformed input, unknown class, incomplete condition)
	ExitAuthError   = 4 // Authentication failed
)
