package recipe

import "github.com/cockroachdb/errors"

// Failure classes of a packaging run. Callers match them with errors.Is;
// wrapped errors keep the original cause and carry the external tool output
// as an error detail.
var (
	// ErrInvalidOptionValue reports an option value outside its legal set.
	ErrInvalidOptionValue = errors.New("invalid option value")

	// ErrUnknownOption reports an override for an option the recipe does not declare.
	ErrUnknownOption = errors.New("unknown option")

	// ErrAnchorNotFound reports that the upstream build description no longer
	// contains the line the source patch hooks into.
	ErrAnchorNotFound = errors.New("patch anchor not found")

	// ErrConfigureFailed reports a failed cmake configure phase.
	ErrConfigureFailed = errors.New("configure failed")

	// ErrBuildFailed reports a failed cmake build of a single target.
	ErrBuildFailed = errors.New("build failed")
)
