package mailbox

import (
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/emontero/bancamail/internal/model"
)

// Client ties the connection scope, search builder, and batch fetcher
// into one message-retrieval operation per account.
type Client struct {
	manager *Manager
	builder *Builder
	fetcher *Fetcher
}

// NewClient composes a mailbox client from its parts.
func NewClient(manager *Manager, builder *Builder, fetcher *Fetcher) *Client {
	return &Client{manager: manager, builder: builder, fetcher: fetcher}
}

// Messages retrieves parsed transaction-notification candidates for the
// given date window. The connection is scoped to this call and released
// on every exit path. Connection and authentication failures are
// returned; per-query and per-message failures are recovered inside the
// search and fetch layers.
func (c *Client) Messages(
	ctx context.Context,
	account model.MailAccount,
	since time.Time,
	until *time.Time,
) ([]model.EmailRecord, error) {
	var records []model.EmailRecord

	err := c.manager.WithConnection(ctx, account, func(client *imapclient.Client) error {
		if _, err := client.Select("INBOX", nil).Wait(); err != nil {
			return fmt.Errorf("selecting INBOX: %w", err)
		}

		criteria := c.builder.Build(since, until)
		uids := c.fetcher.Search(client, criteria)
		if len(uids) == 0 {
			return nil
		}

		records = c.fetcher.Fetch(client, uids)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}
