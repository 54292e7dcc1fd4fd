package mailbox

import (
	"time"

	"github.com/emersion/go-imap/v2"
)

// Builder constructs the set of server-side search queries for one
// ingestion window: one query per known sender and one per transaction
// keyword. Sender and keyword lists are injected immutable data.
type Builder struct {
	senders  []string
	keywords []string
}

// NewBuilder creates a search builder over the given sender and
// keyword lists.
func NewBuilder(senders, keywords []string) *Builder {
	return &Builder{senders: senders, keywords: keywords}
}

// Build returns one criteria per sender and one per keyword, each
// bounded below by since. IMAP BEFORE is exclusive, so an inclusive
// until date becomes BEFORE until+1day.
func (b *Builder) Build(since time.Time, until *time.Time) []*imap.SearchCriteria {
	criteria := make([]*imap.SearchCriteria, 0, len(b.senders)+len(b.keywords))

	for _, sender := range b.senders {
		c := b.dateWindow(since, until)
		c.Header = append(c.Header, imap.SearchCriteriaHeaderField{
			Key:   "From",
			Value: sender,
		})
		criteria = append(criteria, c)
	}

	for _, keyword := range b.keywords {
		c := b.dateWindow(since, until)
		c.Text = append(c.Text, keyword)
		criteria = append(criteria, c)
	}

	return criteria
}

// dateWindow returns criteria holding only the date bounds.
func (b *Builder) dateWindow(since time.Time, until *time.Time) *imap.SearchCriteria {
	c := &imap.SearchCriteria{Since: since}
	if until != nil {
		c.Before = until.AddDate(0, 0, 1)
	}
	return c
}
