package engine

import "context"

// SessionProbe lets the session monitor check and restore the remote
// session.
type SessionProbe struct {
	e *Engine
}

// SessionProbe returns the monitor probe for the remote session.
func (e *Engine) SessionProbe() *SessionProbe {
	return &SessionProbe{e: e}
}

func (p *SessionProbe) Name() string { return "remote" }

func (p *SessionProbe) Alive() bool { return p.e.store.Connected() }

func (p *SessionProbe) Restore(ctx context.Context) error { return p.e.Connect(ctx) }
