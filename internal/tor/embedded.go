package tor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nao1215/tornago"
)

// DefaultStartupTimeout bounds how long Start waits for the daemon to bootstrap.
const DefaultStartupTimeout = 3 * time.Minute

// EmbeddedTor runs a private Tor daemon through tornago for the duration of
// one command, so `policyscan analyze --tor` works without a system Tor.
// Bootstrapping usually takes one to three minutes.
type EmbeddedTor struct {
	mu             sync.Mutex
	process        *tornago.TorProcess
	startupTimeout time.Duration
}

// EmbeddedTorOption configures an EmbeddedTor.
type EmbeddedTorOption func(*EmbeddedTor)

// WithStartupTimeout overrides DefaultStartupTimeout. Non-positive values are ignored.
func WithStartupTimeout(timeout time.Duration) EmbeddedTorOption {
	return func(e *EmbeddedTor) {
		if timeout > 0 {
			e.startupTimeout = timeout
		}
	}
}

// NewEmbeddedTor returns a stopped daemon; call Start to launch it.
func NewEmbeddedTor(opts ...EmbeddedTorOption) *EmbeddedTor {
	e := &EmbeddedTor{startupTimeout: DefaultStartupTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the daemon and waits until it has bootstrapped. Starting a
// running daemon is a no-op.
//
// Cancelling ctx returns ctx.Err() right away; a daemon that finishes
// starting afterwards is stopped in the background.
func (e *EmbeddedTor) Start(ctx context.Context) error {
	if e.IsRunning() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Only the SOCKS port is used; both ports are picked by the OS.
	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(e.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create Tor launch config: %w", err)
	}

	type started struct {
		process *tornago.TorProcess
		err     error
	}
	done := make(chan started, 1)
	go func() {
		process, err := tornago.StartTorDaemon(launchCfg)
		done <- started{process, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if r := <-done; r.err == nil {
				_ = r.process.Stop() //nolint:errcheck // nobody is left to report to
			}
		}()
		return ctx.Err()
	case r := <-done:
		if r.err != nil {
			return fmt.Errorf("failed to start embedded Tor daemon: %w", r.err)
		}
		e.mu.Lock()
		e.process = r.process
		e.mu.Unlock()
		return nil
	}
}

// Stop shuts the daemon down. It is safe to call more than once.
func (e *EmbeddedTor) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.process == nil {
		return nil
	}
	err := e.process.Stop()
	e.process = nil
	return err
}

// SocksAddr returns the daemon's SOCKS5 address as host:port, or "" when
// it is not running.
func (e *EmbeddedTor) SocksAddr() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.process == nil {
		return ""
	}
	return e.process.SocksAddr()
}

// IsRunning reports whether Start succeeded and Stop has not been called.
func (e *EmbeddedTor) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.process != nil
}

// NewClient returns a Client for the daemon's SOCKS port, or ErrNotRunning.
func (e *EmbeddedTor) NewClient(timeout time.Duration) (*Client, error) {
	addr := e.SocksAddr()
	if addr == "" {
		return nil, ErrNotRunning
	}
	return NewClient(addr, timeout)
}
