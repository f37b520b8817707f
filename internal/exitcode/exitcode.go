// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task reference).
	UserError = 1

	// StorageError indicates the configured store could not be opened.
	StorageError = 2

	// FetchError indicates the remote collection could not be fetched.
	FetchError = 3
)
