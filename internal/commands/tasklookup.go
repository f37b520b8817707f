package commands

import (
	"errors"
	"fmt"
	"io"

	"taskflow/internal/exitcode"
	"taskflow/internal/service"
)

// lookupTask parses the reference in args and resolves it against the store.
// On failure it prints the error and returns the exit code to use.
func lookupTask(store service.TaskStore, args []string, errOut io.Writer) (service.Task, int) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError
	}

	task, err := store.Find(ref)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			fmt.Fprintf(errOut, "error: task not found: %s\n", ref)
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return service.Task{}, exitcode.UserError
	}
	return task, exitcode.Success
}
