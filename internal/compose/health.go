package compose

import (
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ksyq12/wpstack/internal/errors"
	"github.com/ksyq12/wpstack/internal/logger"
)

// WaitRunning polls the project until at least one service reports running,
// with capped exponential backoff. Used after `up -d` so the final summary is
// not printed while containers are still being created.
func WaitRunning(t Runner, dir string, timeout time.Duration) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 2 * time.Second
	policy.MaxInterval = 15 * time.Second
	policy.MaxElapsedTime = timeout

	check := func() error {
		running, err := t.Running(dir)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !running {
			logger.Debug("Services not running yet, retrying")
			return errors.Wrap(errors.ErrCodeExternal, "services not running yet", nil)
		}
		return nil
	}

	if err := backoff.Retry(check, policy); err != nil {
		return errors.Wrap(errors.ErrCodeExternal, "services did not reach running state", err)
	}
	return nil
}
