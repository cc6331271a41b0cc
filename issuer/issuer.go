// Package issuer drives a single ACME order from account registration through
// certificate download, entirely in memory.
package issuer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/confidant-sh/confidant/acme"
	"github.com/confidant-sh/confidant/acme/keys"
	"github.com/confidant-sh/confidant/acme/resources"
	"github.com/confidant-sh/confidant/challenge"
)

// DirectoryClient executes the ACME wire operations against the certificate
// authority. Every operation is a single network round trip. All operations
// are idempotent to retry by the Issuer except SignalChallengeReady, which is
// issued at most once per challenge.
type DirectoryClient interface {
	CreateAccount(ctx context.Context) (*resources.Account, error)
	CreateOrder(ctx context.Context, domain string) (*resources.Order, error)
	FetchAuthorizations(ctx context.Context, order *resources.Order) ([]resources.Authorization, error)
	SignalChallengeReady(ctx context.Context, challengeURL string) error
	RefreshOrder(ctx context.Context, order *resources.Order) error
	FinalizeOrder(ctx context.Context, order *resources.Order, csrDER []byte) error
	DownloadCertificate(ctx context.Context, order *resources.Order) ([]byte, error)
	KeyAuthorization(token string) (string, error)
}

// Polling policy. The authorization poll sleeps before each re-check,
// starting at one second and doubling after every pending observation up to
// five seconds; the order poll uses a fixed two second interval. Both are
// bounded at thirty unsuccessful attempts.
const (
	authzInitialDelay = 1 * time.Second
	authzMaxDelay     = 5 * time.Second
	authzMaxAttempts  = 30

	orderPollInterval = 2 * time.Second
	orderMaxAttempts  = 30
)

// Certificate holds the issuance artifacts. Both fields exist only in memory
// and are never written to durable storage by this package.
type Certificate struct {
	// The domain the leaf certificate names.
	Domain string
	// The full PEM certificate chain, leaf first.
	ChainPEM []byte
	// The PEM encoding of the private key the CSR was built from.
	PrivateKeyPEM []byte
}

// Issuer runs the order lifecycle state machine. At most one issuance
// sequence executes per process; the sequence is strictly serial, with no two
// network calls in flight simultaneously. There is no cancellation support
// mid-issuance beyond context propagation, and no resume across restarts:
// a fresh account and order are created every start.
type Issuer struct {
	client DirectoryClient
	store  *challenge.Store
	log    *slog.Logger
	state  State

	// sleep is injected so tests can observe the delay sequence without
	// waiting for it.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithSleep replaces the delay function used between polling attempts.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(i *Issuer) {
		i.sleep = sleep
	}
}

// New constructs an Issuer that stages challenges into store and performs all
// wire operations through client.
func New(client DirectoryClient, store *challenge.Store, logger *slog.Logger, opts ...Option) *Issuer {
	i := &Issuer{
		client: client,
		store:  store,
		log:    logger,
		state:  StateStart,
		sleep:  sleepCtx,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// State reports the lifecycle state the Issuer most recently reached.
func (i *Issuer) State() State {
	return i.state
}

func (i *Issuer) advance(s State) {
	i.state = s
	i.log.Debug("issuance state", "state", s.String())
}

func (i *Issuer) fail(err error) error {
	i.state = StateFailed
	i.log.Error("issuance failed", "error", err)
	return err
}

// Issue obtains a certificate for the single given domain. It runs the full
// sequence: account registration, order creation, authorization resolution
// via HTTP-01 challenges, key/CSR generation, finalization and certificate
// download. Any failure is terminal; there is no retry beyond the built-in
// polling loops.
func (i *Issuer) Issue(ctx context.Context, domain string) (*Certificate, error) {
	i.advance(StateStart)

	if _, err := i.client.CreateAccount(ctx); err != nil {
		return nil, i.fail(err)
	}
	i.advance(StateAccountCreated)

	order, err := i.client.CreateOrder(ctx, domain)
	if err != nil {
		return nil, i.fail(err)
	}
	i.advance(StateOrderCreated)

	authzs, err := i.client.FetchAuthorizations(ctx, order)
	if err != nil {
		return nil, i.fail(err)
	}
	i.advance(StateAuthorizationsFetched)

	// Authorizations are resolved sequentially, never concurrently, to avoid
	// interleaved staging-store writes. This client orders a single
	// identifier, so the poll below matches authorizations by position.
	for idx, authz := range authzs {
		if err := i.resolveAuthorization(ctx, order, idx, authz); err != nil {
			return nil, i.fail(err)
		}
	}

	i.advance(StateFinalizing)
	keyPair, err := keys.NewKeyPair(domain)
	if err != nil {
		return nil, i.fail(err)
	}

	if err := i.client.FinalizeOrder(ctx, order, keyPair.CSRDER); err != nil {
		return nil, i.fail(err)
	}

	i.advance(StatePollingOrder)
	if err := i.pollOrder(ctx, order); err != nil {
		return nil, i.fail(err)
	}
	i.advance(StateOrderValid)

	chainPEM, err := i.client.DownloadCertificate(ctx, order)
	if err != nil {
		return nil, i.fail(err)
	}
	i.advance(StateCertificateDownloaded)

	keyPEM, err := keyPair.PrivateKeyPEM()
	if err != nil {
		return nil, i.fail(err)
	}

	i.log.Info("certificate obtained", "domain", domain)
	return &Certificate{
		Domain:        domain,
		ChainPEM:      chainPEM,
		PrivateKeyPEM: keyPEM,
	}, nil
}

// resolveAuthorization drives one authorization to the valid status. An
// authorization that is already valid on first inspection requires no
// challenge handling at all.
func (i *Issuer) resolveAuthorization(ctx context.Context, order *resources.Order, idx int, authz resources.Authorization) error {
	switch authz.Status {
	case acme.StatusValid:
		i.log.Info("authorization already valid", "id", authz.ID)
		return nil
	case acme.StatusPending:
	case acme.StatusInvalid:
		return fmt.Errorf("authorization %q: %w", authz.ID, acme.ErrValidationFailure)
	default:
		return fmt.Errorf("authorization %q has status %q: %w",
			authz.ID, authz.Status, acme.ErrProtocol)
	}

	chal, ok := authz.HTTP01Challenge()
	if !ok {
		return fmt.Errorf("authorization %q offers no http-01 challenge: %w",
			authz.ID, acme.ErrProtocol)
	}

	keyAuth, err := i.client.KeyAuthorization(chal.Token)
	if err != nil {
		return err
	}

	// The challenge must be staged before readiness is signaled, otherwise
	// the authority may probe before the token is servable.
	i.store.Put(chal.Token, keyAuth)
	i.advance(StateChallengeStaged)
	i.log.Info("staged http-01 challenge", "token", chal.Token)

	if err := i.client.SignalChallengeReady(ctx, chal.URL); err != nil {
		return err
	}
	i.advance(StateReadySignaled)

	i.advance(StatePollingAuthorization)
	if err := i.pollAuthorization(ctx, order, idx); err != nil {
		return err
	}
	i.advance(StateAuthorizationValid)
	return nil
}

// pollAuthorization re-checks the authorization at the given order position
// until it resolves. It sleeps before each re-check, starting at one second
// and doubling after every pending observation, capped at five seconds. After
// thirty pending observations the attempt budget is exhausted.
func (i *Issuer) pollAuthorization(ctx context.Context, order *resources.Order, idx int) error {
	tries := 0
	delay := authzInitialDelay
	for {
		if err := i.sleep(ctx, delay); err != nil {
			return err
		}

		authzs, err := i.client.FetchAuthorizations(ctx, order)
		if err != nil {
			return err
		}
		if idx >= len(authzs) {
			return fmt.Errorf("authorization %d missing from order: %w", idx, acme.ErrProtocol)
		}
		authz := authzs[idx]

		switch authz.Status {
		case acme.StatusValid:
			i.log.Info("authorization validated", "id", authz.ID)
			return nil
		case acme.StatusPending:
			tries++
			if tries > authzMaxAttempts {
				return fmt.Errorf("authorization %q still pending after %d attempts: %w",
					authz.ID, tries, acme.ErrTimeout)
			}
			delay = min(delay*2, authzMaxDelay)
		case acme.StatusInvalid:
			return fmt.Errorf("authorization %q: %w", authz.ID, acme.ErrValidationFailure)
		default:
			return fmt.Errorf("authorization %q has status %q: %w",
				authz.ID, authz.Status, acme.ErrProtocol)
		}
	}
}

// pollOrder re-reads the finalized order on a fixed two second interval until
// the server reports it valid, bounded at thirty processing observations. Any
// status other than valid or processing terminates the sequence before any
// certificate download is attempted.
func (i *Issuer) pollOrder(ctx context.Context, order *resources.Order) error {
	tries := 0
	for {
		if err := i.sleep(ctx, orderPollInterval); err != nil {
			return err
		}

		if err := i.client.RefreshOrder(ctx, order); err != nil {
			return err
		}

		switch order.Status {
		case acme.StatusValid:
			return nil
		case acme.StatusProcessing:
			tries++
			if tries > orderMaxAttempts {
				return fmt.Errorf("order %q still processing after %d attempts: %w",
					order.ID, tries, acme.ErrTimeout)
			}
		default:
			return fmt.Errorf("order %q has status %q: %w",
				order.ID, order.Status, acme.ErrProtocol)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
