package construct

import "errors"

var (
	// ErrIterationLimit is returned when the policy keeps offering edges past the safety bound
	ErrIterationLimit = errors.New("construct: iteration limit reached")
	// ErrIncomplete is returned when construction ends without a single materialized root,
	// typically because the initial graph is not connected
	ErrIncomplete = errors.New("construct: graph did not reduce to a single root")
	// ErrInvalidConfig is returned by Config.Validate
	ErrInvalidConfig = errors.New("construct: invalid config")
)
