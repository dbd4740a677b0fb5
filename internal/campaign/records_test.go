package campaign_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/gmail-newsletter/internal/campaign"
)

func TestOutcomeStatus(t *testing.T) {
	assert.Equal(t, "sent", campaign.Sent().Status())

	failed := campaign.Failed("Gmail API error: quota")
	assert.Equal(t, "error: Gmail API error: quota", failed.Status())
	assert.True(t, campaign.IsError(failed.Status()))
	assert.Equal(t, "Gmail API error: quota", campaign.ErrorDetail(failed.Status()))
	assert.False(t, campaign.IsError(campaign.StatusQueued))
}

func TestRecords(t *testing.T) {
	store := newMemStore()
	rec := campaign.NewRecords(store)
	ctx := context.Background()

	queued, err := rec.CreateQueued(ctx, campaign.Draft{Subject: "S", HTMLBody: "<p>b</p>"}, []string{"a@example.com", "b@example.com"})
	require.NoError(t, err)
	assert.Equal(t, campaign.StatusQueued, queued.Status)
	assert.WithinDuration(t, time.Now(), queued.CreatedAt, time.Minute)
	require.Len(t, queued.Recipients, 2)

	require.NoError(t, rec.Finalize(ctx, queued.ID, campaign.Failed("boom")))
	got, err := rec.Get(ctx, queued.ID)
	require.NoError(t, err)
	assert.Equal(t, "error: boom", got.Status)

	draft, err := rec.SaveDraft(ctx, campaign.Draft{Subject: "Later", FromName: "Me", HTMLBody: "<h1>x</h1>"})
	require.NoError(t, err)
	assert.Equal(t, campaign.StatusDraft, draft.Status)
	assert.Empty(t, draft.Recipients)

	dup, err := rec.Duplicate(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, campaign.Draft{Subject: "Later", FromName: "Me", HTMLBody: "<h1>x</h1>"}, dup)

	list, err := rec.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSaveDraftValidation(t *testing.T) {
	store := newMemStore()
	rec := campaign.NewRecords(store)

	for _, d := range []campaign.Draft{
		{Subject: "", HTMLBody: "<p>x</p>"},
		{Subject: "S", HTMLBody: " \n\t"},
	} {
		_, err := rec.SaveDraft(context.Background(), d)
		require.ErrorIs(t, err, campaign.ErrValidation)
	}
	assert.Zero(t, store.campaignCount())
}

func TestRecordsPersistenceErrors(t *testing.T) {
	store := newMemStore()
	store.createErr = errors.New("disk full")
	rec := campaign.NewRecords(store)

	_, err := rec.CreateQueued(context.Background(), campaign.Draft{Subject: "S", HTMLBody: "b"}, []string{"a@example.com"})
	var perr *campaign.PersistenceError
	require.ErrorAs(t, err, &perr)

	store.createErr = nil
	store.updateErr = errors.New("read only")
	c, err := rec.CreateQueued(context.Background(), campaign.Draft{Subject: "S", HTMLBody: "b"}, []string{"a@example.com"})
	require.NoError(t, err)
	require.ErrorAs(t, rec.Finalize(context.Background(), c.ID, campaign.Sent()), &perr)
}
