package mailbox

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"
	"github.com/rs/zerolog"

	"github.com/emontero/bancamail/internal/model"
)

// fetchBatchSize bounds how many message bodies one FETCH requests, to
// keep memory and network pressure flat regardless of result size.
const fetchBatchSize = 20

// DefaultResultLimit caps search results when no limit is configured.
const DefaultResultLimit = 100

// Fetcher executes searches and retrieves message bodies in batches.
type Fetcher struct {
	log   zerolog.Logger
	limit int
}

// NewFetcher creates a fetcher. limit caps the unioned search results;
// values below 1 fall back to DefaultResultLimit.
func NewFetcher(log zerolog.Logger, limit int) *Fetcher {
	if limit < 1 {
		limit = DefaultResultLimit
	}
	return &Fetcher{log: log, limit: limit}
}

// Search executes each query independently and unions the results. A
// failing query is logged and skipped; it never aborts the search. The
// union is deduplicated, sorted newest first so the limit keeps recent
// transactions, and truncated to the configured limit.
func (f *Fetcher) Search(client *imapclient.Client, criteria []*imap.SearchCriteria) []imap.UID {
	seen := make(map[imap.UID]struct{})
	var uids []imap.UID

	for i, c := range criteria {
		data, err := client.UIDSearch(c, nil).Wait()
		if err != nil {
			f.log.Warn().Int("query", i).Err(err).Msg("search query failed, skipping")
			continue
		}
		for _, uid := range data.AllUIDs() {
			if _, ok := seen[uid]; ok {
				continue
			}
			seen[uid] = struct{}{}
			uids = append(uids, uid)
		}
	}

	sort.Slice(uids, func(i, j int) bool { return uids[i] > uids[j] })

	if len(uids) > f.limit {
		uids = uids[:f.limit]
	}

	return uids
}

// Fetch retrieves raw bodies for the given UIDs in fixed-size batches
// and parses each into an EmailRecord. A message that fails to parse is
// logged and dropped without aborting its batch.
func (f *Fetcher) Fetch(client *imapclient.Client, uids []imap.UID) []model.EmailRecord {
	records := make([]model.EmailRecord, 0, len(uids))

	for start := 0; start < len(uids); start += fetchBatchSize {
		end := start + fetchBatchSize
		if end > len(uids) {
			end = len(uids)
		}
		records = append(records, f.fetchBatch(client, uids[start:end])...)
	}

	return records
}

// fetchBatch fetches and parses one batch of messages.
func (f *Fetcher) fetchBatch(client *imapclient.Client, uids []imap.UID) []model.EmailRecord {
	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), fetchOpts)
	defer fetchCmd.Close()

	var records []model.EmailRecord
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			f.log.Warn().Err(err).Msg("collecting message failed, dropping")
			continue
		}

		rec, err := recordFromBuffer(buf, bodySection)
		if err != nil {
			f.log.Warn().Err(err).Msg("parsing message failed, dropping")
			continue
		}
		records = append(records, rec)
	}

	if err := fetchCmd.Close(); err != nil {
		f.log.Warn().Err(err).Msg("closing fetch command")
	}

	return records
}

// recordFromBuffer converts a fetched message buffer into an
// EmailRecord, choosing the extraction body in preference order: HTML
// part (rendered to text), plain-text part, raw body.
func recordFromBuffer(
	buf *imapclient.FetchMessageBuffer,
	section *imap.FetchItemBodySection,
) (model.EmailRecord, error) {
	if buf.Envelope == nil {
		return model.EmailRecord{}, fmt.Errorf("message UID %v has no envelope", buf.UID)
	}

	rec := model.EmailRecord{
		UID:       uint32(buf.UID),
		MessageID: buf.Envelope.MessageID,
		Subject:   buf.Envelope.Subject,
		Date:      buf.Envelope.Date,
	}
	if rec.MessageID == "" {
		// Some notification systems omit Message-ID; the UID keeps the
		// idempotency key stable for the account's mailbox.
		rec.MessageID = fmt.Sprintf("uid-%d", buf.UID)
	}
	if len(buf.Envelope.From) > 0 {
		rec.Sender = buf.Envelope.From[0].Addr()
	}

	raw := buf.FindBodySection(section)
	rec.TextBody, rec.HTMLBody = parseMIMEBody(raw)

	switch {
	case rec.HTMLBody != "":
		rec.Body = stripHTML(rec.HTMLBody)
	case rec.TextBody != "":
		rec.Body = rec.TextBody
	default:
		rec.Body = string(raw)
	}

	return rec, nil
}

// parseMIMEBody parses a raw RFC 2822 message using go-message and
// extracts the text/plain and text/html parts. If the MIME structure is
// unreadable, the whole body is treated as plain text.
func parseMIMEBody(raw []byte) (textBody, htmlBody string) {
	if len(raw) == 0 {
		return "", ""
	}

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return string(raw), ""
	}
	defer mr.Close()

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := h.ContentType()
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			textBody = string(body)
		case strings.HasPrefix(contentType, "text/html"):
			htmlBody = string(body)
		}
	}

	return textBody, htmlBody
}
