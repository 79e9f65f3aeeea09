package operations

import (
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
)

// ExecuteConfig is the configuration for the ExecuteOperation function.
type ExecuteConfig[IN, DEP any] struct {
	retryConfig RetryConfig[IN, DEP]
}

type ExecuteOption[IN, DEP any] func(*ExecuteConfig[IN, DEP])

type RetryConfig[IN, DEP any] struct {
	// Enabled determines if the retry is enabled for the operation.
	Enabled bool

	// Policy is the retry policy to control the behavior of the retry.
	Policy RetryPolicy
}

// newDisabledRetryConfig returns a default retry configuration that is initially disabled.
func newDisabledRetryConfig[IN, DEP any]() RetryConfig[IN, DEP] {
	return RetryConfig[IN, DEP]{
		Enabled: false,
		Policy: RetryPolicy{
			MaxAttempts: 3,
			Delay:       200 * time.Millisecond,
		},
	}
}

// RetryPolicy defines the arguments to control the retry behavior.
type RetryPolicy struct {
	MaxAttempts uint
	// Delay is the base delay between attempts. Zero keeps the retry-go default.
	Delay time.Duration
}

// options returns the 'avast/retry' functional options for the retry policy.
func (p RetryPolicy) options() []retry.Option {
	opts := []retry.Option{
		retry.Attempts(p.MaxAttempts),
		retry.LastErrorOnly(true),
	}
	if p.Delay > 0 {
		opts = append(opts, retry.Delay(p.Delay))
	}

	return opts
}

// WithRetry is an ExecuteOption that enables the default retry for the operation: 3 attempts,
// 200ms base delay.
func WithRetry[IN, DEP any]() ExecuteOption[IN, DEP] {
	return func(c *ExecuteConfig[IN, DEP]) {
		c.retryConfig.Enabled = true
	}
}

// WithRetryConfig is an ExecuteOption that sets the retry configuration. This provides a way to
// customize the retry behavior specific to the needs of the operation.
func WithRetryConfig[IN, DEP any](config RetryConfig[IN, DEP]) ExecuteOption[IN, DEP] {
	return func(c *ExecuteConfig[IN, DEP]) {
		c.retryConfig = config
	}
}

// ExecuteOperation executes an operation with the given input and dependencies and records the
// resulting report with the bundle's reporter.
//
// Retry:
// By default, the operation is executed once. Use WithRetry or WithRetryConfig to retry on
// failure. To cancel the retry early, return an error with NewUnrecoverableError.
func ExecuteOperation[IN, OUT, DEP any](
	b Bundle,
	operation *Operation[IN, OUT, DEP],
	deps DEP,
	input IN,
	opts ...ExecuteOption[IN, DEP],
) (Report[IN, OUT], error) {
	executeConfig := &ExecuteConfig[IN, DEP]{
		retryConfig: newDisabledRetryConfig[IN, DEP](),
	}
	for _, opt := range opts {
		opt(executeConfig)
	}

	var output OUT
	var err error

	if executeConfig.retryConfig.Enabled {
		// Generate the configurable options for the retry
		retryOpts := executeConfig.retryConfig.Policy.options()
		// Use the operation context in the retry
		retryOpts = append(retryOpts, retry.Context(b.GetContext()))
		retryOpts = append(retryOpts, retry.OnRetry(func(attempt uint, err error) {
			b.Logger.Infow("Operation failed. Retrying...",
				"operation", operation.def.ID, "attempt", attempt, "error", err)
		}))

		output, err = retry.DoWithData(
			func() (OUT, error) {
				return operation.execute(b, deps, input)
			},
			retryOpts...,
		)
	} else {
		output, err = operation.execute(b, deps, input)
	}

	report := NewReport(operation.def, input, output, err)
	if rerr := b.reporter.AddReport(genericReport(report)); rerr != nil {
		return Report[IN, OUT]{}, rerr
	}

	if err != nil {
		return report, fmt.Errorf("operation %s: %w", operation.def.ID, err)
	}

	return report, nil
}

// NewUnrecoverableError creates an error that indicates an unrecoverable error.
// If this error is returned inside an operation, the operation will no longer retry.
// This allows the operation to fail fast if it encounters an unrecoverable error.
func NewUnrecoverableError(err error) error {
	return retry.Unrecoverable(err)
}
