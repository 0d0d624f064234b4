package sentiment

import "time"

// RetryPolicy defines retry behavior for external model calls. Failed calls
// are re-attempted up to MaxRetries times with exponential backoff before the
// scorer falls back to degraded scoring.
type RetryPolicy struct {
	MaxRetries     int           `yaml:"max_retries"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	BackoffFactor  float64       `yaml:"backoff_factor"`
}

// DefaultRetryPolicy returns the default retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     2,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		BackoffFactor:  2.0,
	}
}

// Backoff calculates the backoff duration before the given retry attempt.
func (p RetryPolicy) Backoff(retryCount int) time.Duration {
	if retryCount <= 0 {
		return p.InitialBackoff
	}

	backoff := p.InitialBackoff
	for i := 0; i < retryCount; i++ {
		backoff = time.Duration(float64(backoff) * p.BackoffFactor)
		if backoff > p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	return backoff
}
