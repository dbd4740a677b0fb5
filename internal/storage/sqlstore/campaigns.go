package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hal9000y/gmail-newsletter/internal/storage"
)

// CreateCampaign inserts the campaign row and one recipient row per email,
// in order, inside a single transaction.
func (s *Store) CreateCampaign(ctx context.Context, c storage.Campaign, emails []string) (storage.Campaign, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	c.CreatedAt = fromMillis(toMillis(c.CreatedAt))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.Campaign{}, fmt.Errorf("db.BeginTx failed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx,
		s.rebind(`INSERT INTO campaigns (subject, from_name, html_body, created_at, status) VALUES (?, ?, ?, ?, ?) RETURNING id`),
		c.Subject, c.FromName, c.HTMLBody, toMillis(c.CreatedAt), c.Status,
	).Scan(&c.ID)
	if err != nil {
		return storage.Campaign{}, fmt.Errorf("insert campaign failed: %w", err)
	}

	c.Recipients = make([]storage.Recipient, 0, len(emails))
	insertRecipient := s.rebind(`INSERT INTO campaign_recipients (campaign_id, position, email) VALUES (?, ?, ?) RETURNING id`)
	for i, email := range emails {
		r := storage.Recipient{CampaignID: c.ID, Email: email}
		if err := tx.QueryRowContext(ctx, insertRecipient, c.ID, i, email).Scan(&r.ID); err != nil {
			return storage.Campaign{}, fmt.Errorf("insert recipient %d failed: %w", i, err)
		}
		c.Recipients = append(c.Recipients, r)
	}

	if err := tx.Commit(); err != nil {
		return storage.Campaign{}, fmt.Errorf("tx.Commit failed: %w", err)
	}
	return c, nil
}

// UpdateCampaignStatus sets the status column of one campaign.
func (s *Store) UpdateCampaignStatus(ctx context.Context, id int64, status string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE campaigns SET status = ? WHERE id = ?`), status, id)
	if err != nil {
		return fmt.Errorf("update campaign %d status failed: %w", id, err)
	}
	return requireRow(res, id)
}

// GetCampaign returns a campaign with its recipients in queue order.
func (s *Store) GetCampaign(ctx context.Context, id int64) (storage.Campaign, error) {
	var (
		c         storage.Campaign
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id, subject, from_name, html_body, created_at, status FROM campaigns WHERE id = ?`), id,
	).Scan(&c.ID, &c.Subject, &c.FromName, &c.HTMLBody, &createdAt, &c.Status)
	if err != nil {
		return storage.Campaign{}, fmt.Errorf("get campaign %d failed: %w", id, notFound(err))
	}
	c.CreatedAt = fromMillis(createdAt)

	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT id, campaign_id, email FROM campaign_recipients WHERE campaign_id = ? ORDER BY position ASC, id ASC`), id)
	if err != nil {
		return storage.Campaign{}, fmt.Errorf("list recipients of %d failed: %w", id, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var r storage.Recipient
		if err := rows.Scan(&r.ID, &r.CampaignID, &r.Email); err != nil {
			return storage.Campaign{}, fmt.Errorf("scan recipient failed: %w", err)
		}
		c.Recipients = append(c.Recipients, r)
	}
	if err := rows.Err(); err != nil {
		return storage.Campaign{}, fmt.Errorf("iterate recipients failed: %w", err)
	}
	return c, nil
}

// ListCampaigns returns campaigns newest first, without recipients.
func (s *Store) ListCampaigns(ctx context.Context) ([]storage.Campaign, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subject, from_name, html_body, created_at, status FROM campaigns ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list campaigns failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []storage.Campaign
	for rows.Next() {
		var (
			c         storage.Campaign
			createdAt int64
		)
		if err := rows.Scan(&c.ID, &c.Subject, &c.FromName, &c.HTMLBody, &createdAt, &c.Status); err != nil {
			return nil, fmt.Errorf("scan campaign failed: %w", err)
		}
		c.CreatedAt = fromMillis(createdAt)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaigns failed: %w", err)
	}
	return out, nil
}

// DeleteCampaign removes a campaign; its recipient rows cascade.
func (s *Store) DeleteCampaign(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM campaigns WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete campaign %d failed: %w", id, err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("res.RowsAffected failed: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("id %d: %w", id, storage.ErrNotFound)
	}
	return nil
}
