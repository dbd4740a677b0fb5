package campaign_test

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hal9000y/gmail-newsletter/internal/auth"
	"github.com/hal9000y/gmail-newsletter/internal/gservice"
	"github.com/hal9000y/gmail-newsletter/internal/storage"
)

// memStore is an in-memory contact and campaign store.
type memStore struct {
	mu        sync.Mutex
	contacts  map[int64]storage.Contact
	campaigns map[int64]storage.Campaign
	nextID    int64

	createErr error
	updateErr error
	lookupErr error
}

func newMemStore(contacts ...storage.Contact) *memStore {
	m := &memStore{
		contacts:  make(map[int64]storage.Contact),
		campaigns: make(map[int64]storage.Campaign),
	}
	for _, c := range contacts {
		m.contacts[c.ID] = c
	}
	return m
}

func (m *memStore) GetContact(_ context.Context, id int64) (storage.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return storage.Contact{}, m.lookupErr
	}
	c, ok := m.contacts[id]
	if !ok {
		return storage.Contact{}, fmt.Errorf("contact %d: %w", id, storage.ErrNotFound)
	}
	return c, nil
}

func (m *memStore) CreateCampaign(_ context.Context, c storage.Campaign, emails []string) (storage.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return storage.Campaign{}, m.createErr
	}
	m.nextID++
	c.ID = m.nextID
	c.Recipients = nil
	for i, e := range emails {
		c.Recipients = append(c.Recipients, storage.Recipient{ID: int64(i + 1), CampaignID: c.ID, Email: e})
	}
	m.campaigns[c.ID] = c
	return c, nil
}

func (m *memStore) UpdateCampaignStatus(_ context.Context, id int64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	c, ok := m.campaigns[id]
	if !ok {
		return storage.ErrNotFound
	}
	c.Status = status
	m.campaigns[id] = c
	return nil
}

func (m *memStore) GetCampaign(_ context.Context, id int64) (storage.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return storage.Campaign{}, storage.ErrNotFound
	}
	return c, nil
}

func (m *memStore) ListCampaigns(_ context.Context) ([]storage.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]storage.Campaign, 0, len(m.campaigns))
	for _, c := range m.campaigns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) campaignCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.campaigns)
}

type gateMock struct {
	AcquireFunc func(ctx context.Context) (auth.Credential, error)
	calls       int
}

func (g *gateMock) Acquire(ctx context.Context) (auth.Credential, error) {
	g.calls++
	return g.AcquireFunc(ctx)
}

func connectedGate() *gateMock {
	return &gateMock{AcquireFunc: func(context.Context) (auth.Credential, error) {
		return auth.Credential{AccessToken: "tok"}, nil
	}}
}

type transportMock struct {
	SendFunc func(ctx context.Context, cred auth.Credential, msg gservice.Message) (string, error)
	sent     []gservice.Message
}

func (t *transportMock) Send(ctx context.Context, cred auth.Credential, msg gservice.Message) (string, error) {
	t.sent = append(t.sent, msg)
	return t.SendFunc(ctx, cred, msg)
}

func okTransport() *transportMock {
	return &transportMock{SendFunc: func(_ context.Context, _ auth.Credential, msg gservice.Message) (string, error) {
		return "id-" + msg.To, nil
	}}
}
