package commands

// Command usage patterns
const (
	OptionsUsage = "[OPTIONS]"
)

// Exit codes shared across commands
const (
	ExitSuccess = 0
	// ExitFailure covers task failures and validation findings
	ExitFailure = 1
	// ExitUsage covers argument and configuration errors
	ExitUsage = 2
)
