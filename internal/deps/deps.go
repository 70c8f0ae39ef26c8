package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external binary the export pipeline shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status couples a Requirement with what resolution found on this host.
type Status struct {
	Requirement
	Available bool
	Detail    string
}

// CheckBinaries resolves each requirement and reports what it found.
// Result order matches input order.
func CheckBinaries(requirements []Requirement) []Status {
	statuses := make([]Status, len(requirements))
	for i, req := range requirements {
		statuses[i] = resolve(req)
	}
	return statuses
}

func resolve(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)

	status := Status{Requirement: req}
	switch {
	case req.Command == "":
		status.Detail = "command not configured"
	case !onPath(req.Command):
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
	default:
		status.Available = true
	}
	return status
}

func onPath(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}
