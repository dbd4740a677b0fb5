package campaign

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hal9000y/gmail-newsletter/internal/storage"
)

type campaignStore interface {
	CreateCampaign(ctx context.Context, c storage.Campaign, emails []string) (storage.Campaign, error)
	UpdateCampaignStatus(ctx context.Context, id int64, status string) error
	GetCampaign(ctx context.Context, id int64) (storage.Campaign, error)
	ListCampaigns(ctx context.Context) ([]storage.Campaign, error)
}

// Draft is the composed content of a campaign.
type Draft struct {
	Subject  string
	FromName string
	HTMLBody string
}

func (d Draft) validate() error {
	if strings.TrimSpace(d.Subject) == "" || strings.TrimSpace(d.HTMLBody) == "" {
		return &ValidationError{Reason: "subject and body are required"}
	}
	return nil
}

// Records creates and finalizes durable campaign records.
type Records struct {
	store campaignStore
	now   func() time.Time
}

// NewRecords creates a record manager on store.
func NewRecords(store campaignStore) *Records {
	return &Records{
		store: store,
		now:   time.Now,
	}
}

// CreateQueued persists a queued campaign with one recipient row per address,
// in order, as a single atomic write.
func (r *Records) CreateQueued(ctx context.Context, d Draft, recipients []string) (storage.Campaign, error) {
	return r.create(ctx, d, StatusQueued, recipients)
}

// SaveDraft persists a draft campaign without recipients.
func (r *Records) SaveDraft(ctx context.Context, d Draft) (storage.Campaign, error) {
	if err := d.validate(); err != nil {
		return storage.Campaign{}, err
	}
	return r.create(ctx, d, StatusDraft, nil)
}

func (r *Records) create(ctx context.Context, d Draft, status string, recipients []string) (storage.Campaign, error) {
	c, err := r.store.CreateCampaign(ctx, storage.Campaign{
		Subject:   d.Subject,
		FromName:  d.FromName,
		HTMLBody:  d.HTMLBody,
		CreatedAt: r.now().UTC(),
		Status:    status,
	}, recipients)
	if err != nil {
		return storage.Campaign{}, &PersistenceError{Op: "create " + status + " campaign", Err: err}
	}
	return c, nil
}

// Finalize applies the terminal status of a dispatch.
func (r *Records) Finalize(ctx context.Context, id int64, o Outcome) error {
	if err := r.store.UpdateCampaignStatus(ctx, id, o.Status()); err != nil {
		return &PersistenceError{Op: fmt.Sprintf("finalize campaign %d", id), Err: err}
	}
	return nil
}

// Get returns one campaign with its recipient snapshot.
func (r *Records) Get(ctx context.Context, id int64) (storage.Campaign, error) {
	c, err := r.store.GetCampaign(ctx, id)
	if err != nil {
		return storage.Campaign{}, fmt.Errorf("store.GetCampaign failed: %w", err)
	}
	return c, nil
}

// List returns campaigns newest first.
func (r *Records) List(ctx context.Context) ([]storage.Campaign, error) {
	cs, err := r.store.ListCampaigns(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.ListCampaigns failed: %w", err)
	}
	return cs, nil
}

// Duplicate returns the content of an existing campaign for re-composition.
func (r *Records) Duplicate(ctx context.Context, id int64) (Draft, error) {
	c, err := r.Get(ctx, id)
	if err != nil {
		return Draft{}, err
	}
	return Draft{Subject: c.Subject, FromName: c.FromName, HTMLBody: c.HTMLBody}, nil
}
