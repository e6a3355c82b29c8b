package dispatch

import "fmt"

// ValidationError reports malformed dispatch input. Nothing was enqueued.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// CredentialError reports that the vault is misconfigured or a project
// credential failed to decrypt. The entire dispatch is aborted before any
// job is built; a partial credential failure is never silently narrowed to
// the unaffected platforms.
type CredentialError struct {
	Cause error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credentials: %v", e.Cause)
}

func (e *CredentialError) Unwrap() error { return e.Cause }

// TargetingError reports that storage was unavailable while resolving
// devices or preferences. The dispatch is aborted with no partial enqueue.
type TargetingError struct {
	Cause error
}

func (e *TargetingError) Error() string {
	return fmt.Sprintf("targeting: %v", e.Cause)
}

func (e *TargetingError) Unwrap() error { return e.Cause }
