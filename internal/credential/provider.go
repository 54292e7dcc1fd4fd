package credential

import (
	"context"
	"fmt"

	"github.com/emontero/bancamail/internal/model"
)

// KeyringProvider supplies account credentials from the system keyring.
// It implements mailbox.CredentialProvider.
type KeyringProvider struct{}

// MailboxPassword returns the stored password for a password account.
func (KeyringProvider) MailboxPassword(_ context.Context, account model.MailAccount) (string, error) {
	return Password(account.Email)
}

// AccessToken returns the current OAuth2 access token for an OAuth
// account. The token is returned as-is even when expired; a stale token
// is rejected by the server and surfaces as an authentication error.
func (KeyringProvider) AccessToken(_ context.Context, account model.MailAccount) (string, error) {
	tok, err := Token(account.Email)
	if err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("no access token stored for %q", account.Email)
	}
	return tok.AccessToken, nil
}
