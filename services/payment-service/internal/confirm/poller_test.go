package confirm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/navalha-app/navalha/services/payment-service/internal/provider"
)

type scriptedProvider struct {
	statuses []provider.Status
	errs     []error
	calls    int
}

func (s *scriptedProvider) Name() string { return "scripted" }

func (s *scriptedProvider) CreateCharge(context.Context, provider.Charge) (provider.Session, error) {
	return provider.Session{}, errors.New("not used")
}

func (s *scriptedProvider) CheckCharge(context.Context, string) (provider.Status, error) {
	i := s.calls
	s.calls++
	if i >= len(s.statuses) {
		i = len(s.statuses) - 1
	}
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return s.statuses[i], err
}

func TestPollerStopsOnConfirmation(t *testing.T) {
	prov := &scriptedProvider{statuses: []provider.Status{
		provider.StatusPending,
		provider.StatusPending,
		provider.StatusPaid,
	}}
	p := New(5, 0, 0)

	res, err := p.Run(context.Background(), prov, "ch_1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status != provider.StatusPaid {
		t.Fatalf("status = %s", res.Status)
	}
	if res.Attempts != 3 {
		t.Fatalf("attempts = %d, want 3", res.Attempts)
	}
	if prov.calls != 3 {
		t.Fatalf("provider called %d times", prov.calls)
	}
}

func TestPollerNeverConfirms(t *testing.T) {
	prov := &scriptedProvider{statuses: []provider.Status{provider.StatusPending}}
	p := New(5, 0, 0)

	res, err := p.Run(context.Background(), prov, "ch_1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// Still pending after all attempts is not an error.
	if res.Status != provider.StatusPending {
		t.Fatalf("status = %s", res.Status)
	}
	if res.Attempts != 5 {
		t.Fatalf("attempts = %d, want 5", res.Attempts)
	}
}

func TestPollerStopsOnExpiry(t *testing.T) {
	prov := &scriptedProvider{statuses: []provider.Status{
		provider.StatusPending,
		provider.StatusExpired,
	}}
	p := New(5, 0, 0)

	res, err := p.Run(context.Background(), prov, "ch_1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status != provider.StatusExpired {
		t.Fatalf("status = %s", res.Status)
	}
	if res.Attempts != 2 {
		t.Fatalf("attempts = %d, want 2", res.Attempts)
	}
}

func TestPollerSurfacesProviderError(t *testing.T) {
	boom := errors.New("boom")
	prov := &scriptedProvider{
		statuses: []provider.Status{provider.StatusPending},
		errs:     []error{boom},
	}
	p := New(5, 0, 0)

	_, err := p.Run(context.Background(), prov, "ch_1")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestPollerHonorsContext(t *testing.T) {
	prov := &scriptedProvider{statuses: []provider.Status{provider.StatusPending}}
	p := New(5, time.Hour, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := p.Run(ctx, prov, "ch_1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	// The first check runs before any delay; cancellation hits the sleep.
	if res.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", res.Attempts)
	}
}

func TestPollerDefaults(t *testing.T) {
	p := New(0, -time.Second, -time.Second)
	if p.Attempts != 5 || p.Delay != 0 || p.SettleDelay != 0 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}
