package commands

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef extracts the single task reference from args.
//
// A reference is a 1-based task number as printed by list, a full task id or
// an unambiguous id prefix. Resolution happens in the task store.
func ParseTaskRef(args []string) (string, error) {
	if len(args) == 0 {
		return "", ErrTaskRefRequired
	}
	if len(args) > 1 {
		return "", fmt.Errorf("too many task references: %s", strings.Join(args, " "))
	}
	ref := strings.TrimSpace(args[0])
	if ref == "" {
		return "", ErrTaskRefRequired
	}
	if strings.HasPrefix(ref, "-") {
		return "", fmt.Errorf("invalid task reference: %s", ref)
	}
	return ref, nil
}

// joinArgs joins positional words with single spaces.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
