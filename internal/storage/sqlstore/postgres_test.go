package sqlstore

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/gmail-newsletter/internal/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := New(db, Postgres)
	s.now = func() time.Time { return time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC) }
	return s, mock
}

func TestPostgresCreateCampaignCommits(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`INSERT INTO campaigns (subject, from_name, html_body, created_at, status) VALUES ($1, $2, $3, $4, $5) RETURNING id`)).
		WithArgs("Subj", "Team", "<p>x</p>", int64(1777636800000), "queued").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta(
		`INSERT INTO campaign_recipients (campaign_id, position, email) VALUES ($1, $2, $3) RETURNING id`)).
		WithArgs(7, 0, "a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(70))
	mock.ExpectQuery(regexp.QuoteMeta(
		`INSERT INTO campaign_recipients (campaign_id, position, email) VALUES ($1, $2, $3) RETURNING id`)).
		WithArgs(7, 1, "b@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(71))
	mock.ExpectCommit()

	c, err := s.CreateCampaign(context.Background(),
		storage.Campaign{Subject: "Subj", FromName: "Team", HTMLBody: "<p>x</p>", Status: "queued"},
		[]string{"a@example.com", "b@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.ID)
	require.Len(t, c.Recipients, 2)
	assert.Equal(t, int64(71), c.Recipients[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateCampaignRollsBackOnRecipientFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO campaigns`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO campaign_recipients`)).
		WithArgs(3, 0, "a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(30))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO campaign_recipients`)).
		WithArgs(3, 1, "b@example.com").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := s.CreateCampaign(context.Background(),
		storage.Campaign{Subject: "Subj", HTMLBody: "<p>x</p>", Status: "queued"},
		[]string{"a@example.com", "b@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateCampaignStatus(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE campaigns SET status = $1 WHERE id = $2`)).
		WithArgs("error: boom", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE campaigns SET status = $1 WHERE id = $2`)).
		WithArgs("sent", 6).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.UpdateCampaignStatus(context.Background(), 5, "error: boom"))
	require.ErrorIs(t, s.UpdateCampaignStatus(context.Background(), 6, "sent"), storage.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetContactNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, tags, notes FROM contacts WHERE id = $1`)).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "tags", "notes"}))

	_, err := s.GetContact(context.Background(), 42)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
