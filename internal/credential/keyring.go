package credential

import (
	"encoding/json"
	"fmt"

	"github.com/99designs/keyring"
	"golang.org/x/oauth2"
)

const serviceName = "bancamail"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/bancamail/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("bancamail-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Password retrieves the mailbox password for an account email.
func Password(email string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(email)
	if err != nil {
		return "", fmt.Errorf("getting password for %q: %w", email, err)
	}

	return string(item.Data), nil
}

// SetPassword stores the mailbox password for an account email.
func SetPassword(email, password string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  email,
		Data: []byte(password),
	})
	if err != nil {
		return fmt.Errorf("setting password for %q: %w", email, err)
	}

	return nil
}

// tokenKey namespaces OAuth tokens away from passwords in the ring.
func tokenKey(email string) string {
	return "oauth:" + email
}

// Token retrieves the stored OAuth2 token for an account email. Tokens
// are stored in the standard oauth2.Token JSON shape; refreshing them
// is an external concern.
func Token(email string) (*oauth2.Token, error) {
	ring, err := openKeyring()
	if err != nil {
		return nil, err
	}

	item, err := ring.Get(tokenKey(email))
	if err != nil {
		return nil, fmt.Errorf("getting oauth token for %q: %w", email, err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(item.Data, &tok); err != nil {
		return nil, fmt.Errorf("parsing oauth token for %q: %w", email, err)
	}

	return &tok, nil
}

// SetToken stores an OAuth2 token for an account email.
func SetToken(email string, tok *oauth2.Token) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encoding oauth token for %q: %w", email, err)
	}

	err = ring.Set(keyring.Item{
		Key:  tokenKey(email),
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("setting oauth token for %q: %w", email, err)
	}

	return nil
}

// Delete removes both the password and any OAuth token for an account.
func Delete(email string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	if err := ring.Remove(email); err != nil {
		return fmt.Errorf("deleting password for %q: %w", email, err)
	}
	// Token may legitimately be absent for password accounts.
	_ = ring.Remove(tokenKey(email))

	return nil
}
