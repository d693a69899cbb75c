package confirm

import (
	"context"
	"time"

	"github.com/navalha-app/navalha/services/payment-service/internal/provider"
)

// Poller asks the provider for a charge's status a fixed number of times with
// a fixed delay in between. It never loops forever: when the attempts run out
// the charge is reported in its last-known state, and "still pending" is a
// valid outcome the caller must handle.
type Poller struct {
	Attempts    int
	Delay       time.Duration
	SettleDelay time.Duration
}

// Result carries the final status and how many checks it took.
type Result struct {
	Status   provider.Status
	Attempts int
}

func New(attempts int, delay, settleDelay time.Duration) *Poller {
	if attempts <= 0 {
		attempts = 5
	}
	if delay < 0 {
		delay = 0
	}
	if settleDelay < 0 {
		settleDelay = 0
	}
	return &Poller{Attempts: attempts, Delay: delay, SettleDelay: settleDelay}
}

// Run polls until the charge leaves the pending state or attempts are
// exhausted. After a confirmation it waits one extra settle delay so
// downstream reads observe the provider's write.
func (p *Poller) Run(ctx context.Context, prov provider.Provider, providerChargeID string) (Result, error) {
	status := provider.StatusPending
	attempts := 0

	for attempts < p.Attempts {
		if attempts > 0 {
			if err := sleep(ctx, p.Delay); err != nil {
				return Result{Status: status, Attempts: attempts}, err
			}
		}

		s, err := prov.CheckCharge(ctx, providerChargeID)
		attempts++
		if err != nil {
			return Result{Status: status, Attempts: attempts}, err
		}
		status = s
		if status != provider.StatusPending {
			break
		}
	}

	if status == provider.StatusPaid {
		if err := sleep(ctx, p.SettleDelay); err != nil {
			return Result{Status: status, Attempts: attempts}, err
		}
	}
	return Result{Status: status, Attempts: attempts}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
