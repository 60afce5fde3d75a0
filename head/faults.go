package head

import "fmt"

// FrontendNotFoundError marks the benign fault category: the optional
// frontend assets are absent. The run ends, but the supervisor logs a
// warning instead of alarming the cluster.
type FrontendNotFoundError struct {
	Dir string
}

func (e *FrontendNotFoundError) Error() string {
	return fmt.Sprintf("frontend assets not found under %s", e.Dir)
}

// ModuleInitError is raised when a dashboard module fails to initialize.
type ModuleInitError struct {
	Module string
	Cause  error
}

func (e *ModuleInitError) Error() string {
	return fmt.Sprintf("module %s failed to initialize: %v", e.Module, e.Cause)
}

func (e *ModuleInitError) Unwrap() error {
	return e.Cause
}
