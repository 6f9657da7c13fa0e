package vsphere

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/fault"
	"github.com/vmware/govmomi/vim25/soap"
	"github.com/vmware/govmomi/vim25/types"

	"github.com/giantswarm/mcp-vsphere/internal/logging"
)

// SessionCounter tracks the number of live vCenter sessions. The
// instrumentation metrics recorder satisfies it.
type SessionCounter interface {
	IncrementActiveSessions(ctx context.Context)
	DecrementActiveSessions(ctx context.Context)
}

// DialerOption configures the production dialer.
type DialerOption func(*govmomiDialer)

// WithSessionCounter records every session open and close on the given
// counter, so the active-session gauge tracks the dialer's lifecycle.
func WithSessionCounter(counter SessionCounter) DialerOption {
	return func(d *govmomiDialer) {
		d.counter = counter
	}
}

// NewDialer returns the production Dialer backed by govmomi. Constructing
// the dialer performs no network I/O; sessions are established per Dial so
// startup only fails on configuration problems.
func NewDialer(cfg *Config, logger *slog.Logger, opts ...DialerOption) Dialer {
	if logger == nil {
		logger = slog.Default()
	}
	d := &govmomiDialer{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type govmomiDialer struct {
	cfg     *Config
	logger  *slog.Logger
	counter SessionCounter
}

// Dial logs in to vCenter and returns a scoped session. The handshake is
// bounded by the configured timeout regardless of the caller's context.
func (d *govmomiDialer) Dial(ctx context.Context) (Connection, error) {
	dialCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	u, err := soap.ParseURL(d.cfg.Host)
	if err != nil {
		return nil, &ConnectionError{Host: d.cfg.Host, Err: err}
	}
	u.User = url.UserPassword(d.cfg.User, d.cfg.Password)

	client, err := govmomi.NewClient(dialCtx, u, d.cfg.Insecure)
	if err != nil {
		// SOAP faults can echo back raw addresses; sanitize before logging.
		d.logger.Warn("vCenter login failed",
			logging.Host(d.cfg.Host), logging.SanitizedErr(err))
		if isAuthFault(err) {
			return nil, &ConnectionError{Host: d.cfg.Host, Err: err, Auth: true}
		}
		return nil, &ConnectionError{Host: d.cfg.Host, Err: err}
	}

	d.logger.Debug("vCenter session established",
		logging.Host(d.cfg.Host), "user", d.cfg.User)

	if d.counter != nil {
		d.counter.IncrementActiveSessions(ctx)
	}

	return &session{
		client:  client,
		cfg:     d.cfg,
		logger:  d.logger,
		counter: d.counter,
	}, nil
}

// session is the govmomi-backed Connection. One session serves one tool
// invocation; there is no shared mutable state between concurrent lookups.
type session struct {
	client  *govmomi.Client
	cfg     *Config
	logger  *slog.Logger
	counter SessionCounter

	closeOnce sync.Once
	closeErr  error
}

// Close logs out of the vCenter session. Idempotent: only the first call
// performs the logout and releases the session count, later calls return
// the recorded result.
func (s *session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.closeErr = s.client.Logout(ctx)
		if s.counter != nil {
			s.counter.DecrementActiveSessions(ctx)
		}
	})
	return s.closeErr
}

// isAuthFault reports whether err is a vSphere credential rejection as
// opposed to a transport failure.
func isAuthFault(err error) bool {
	return fault.Is(err, &types.InvalidLogin{}) ||
		fault.Is(err, &types.NoPermission{}) ||
		fault.Is(err, &types.NotAuthenticated{})
}
