package mailbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-sasl"
	"github.com/rs/zerolog"

	"github.com/emontero/bancamail/internal/model"
)

// ConnectionError wraps DNS, timeout, TLS-handshake, and refused
// failures while opening the mailbox connection. It is fatal for the
// run; retry policy lives with the caller.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AuthenticationError wraps login and OAuth failures. Fatal for the run.
type AuthenticationError struct {
	Account string
	Err     error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authenticating %s: %v", e.Account, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// IsAuthError reports whether err (or any error in its chain) is an
// AuthenticationError.
func IsAuthError(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

// CredentialProvider supplies the secrets needed to authenticate an
// account. Token refresh is not this system's concern: AccessToken
// returns whatever is currently stored, and a stale token surfaces as
// an AuthenticationError when the server rejects it.
type CredentialProvider interface {
	MailboxPassword(ctx context.Context, account model.MailAccount) (string, error)
	AccessToken(ctx context.Context, account model.MailAccount) (string, error)
}

// Manager owns the connect/authenticate/disconnect lifecycle for
// mailbox connections. A connection is exclusively owned by the
// invocation that opened it; the protocol is stateful, so all calls on
// one connection are sequential.
type Manager struct {
	creds CredentialProvider
	log   zerolog.Logger
}

// NewManager creates a connection manager.
func NewManager(creds CredentialProvider, log zerolog.Logger) *Manager {
	return &Manager{creds: creds, log: log}
}

// connect opens a TLS connection to the account's resolved server.
func (m *Manager) connect(account model.MailAccount) (*imapclient.Client, error) {
	srv := Resolve(account)
	addr := fmt.Sprintf("%s:%d", srv.Host, srv.Port)

	client, err := imapclient.DialTLS(addr, nil)
	if err != nil {
		return nil, &ConnectionError{Addr: addr, Err: err}
	}

	return client, nil
}

// authenticate logs the connection in, selecting XOAUTH2 when the
// account is OAuth-configured and password LOGIN otherwise.
func (m *Manager) authenticate(ctx context.Context, client *imapclient.Client, account model.MailAccount) error {
	if account.UseOAuth {
		token, err := m.creds.AccessToken(ctx, account)
		if err != nil {
			return &AuthenticationError{Account: account.Email, Err: err}
		}
		if err := client.Authenticate(sasl.NewXoauth2Client(account.Email, token)); err != nil {
			return &AuthenticationError{Account: account.Email, Err: err}
		}
		return nil
	}

	password, err := m.creds.MailboxPassword(ctx, account)
	if err != nil {
		return &AuthenticationError{Account: account.Email, Err: err}
	}
	if err := client.Login(account.Email, password).Wait(); err != nil {
		return &AuthenticationError{Account: account.Email, Err: err}
	}

	return nil
}

// WithConnection runs body with an authenticated connection and
// guarantees logout on every exit path, including authentication
// failures and errors from body itself. A logout failure (or logging
// out an already-dropped connection) is logged and never masks body's
// own result.
func (m *Manager) WithConnection(
	ctx context.Context,
	account model.MailAccount,
	body func(client *imapclient.Client) error,
) error {
	client, err := m.connect(account)
	if err != nil {
		return err
	}

	defer func() {
		if err := client.Logout().Wait(); err != nil {
			m.log.Warn().
				Str("account", account.Email).
				Err(err).
				Msg("mailbox logout failed")
		}
	}()

	if err := m.authenticate(ctx, client, account); err != nil {
		return err
	}

	return body(client)
}
