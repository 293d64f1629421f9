package providerfake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-bridge/provider"
	"github.com/jrsteele09/go-auth-bridge/sessions"
)

var _ provider.Provider = (*FakeProvider)(nil)

// FakeProvider answers with scripted functions and counts calls.
type FakeProvider struct {
	Create  func(identifier, secret string) (*sessions.Session, error)
	Refresh func(refreshToken string) (*sessions.Session, error)

	lock         sync.Mutex
	createCalls  int
	refreshCalls int
}

func New() *FakeProvider {
	return &FakeProvider{}
}

func (p *FakeProvider) CreateSession(_ context.Context, identifier, secret string) (*sessions.Session, error) {
	p.lock.Lock()
	p.createCalls++
	create := p.Create
	p.lock.Unlock()

	if create == nil {
		return nil, provider.ErrUnavailable
	}
	return create(identifier, secret)
}

func (p *FakeProvider) RefreshSession(_ context.Context, refreshToken string) (*sessions.Session, error) {
	p.lock.Lock()
	p.refreshCalls++
	refresh := p.Refresh
	p.lock.Unlock()

	if refresh == nil {
		return nil, provider.ErrUnavailable
	}
	return refresh(refreshToken)
}

func (p *FakeProvider) CreateCalls() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.createCalls
}

func (p *FakeProvider) RefreshCalls() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.refreshCalls
}
