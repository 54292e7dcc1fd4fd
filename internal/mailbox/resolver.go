package mailbox

import (
	"github.com/emontero/bancamail/internal/model"
)

// DefaultPort is the implicit-TLS IMAP port used unless overridden.
const DefaultPort = 993

// Server is a resolved IMAP endpoint.
type Server struct {
	Host string
	Port int
	TLS  bool
}

// hostTable maps well-known email domains to their IMAP hosts.
var hostTable = map[string]string{
	"gmail.com":      "imap.gmail.com",
	"googlemail.com": "imap.gmail.com",
	"outlook.com":    "outlook.office365.com",
	"hotmail.com":    "outlook.office365.com",
	"live.com":       "outlook.office365.com",
	"yahoo.com":      "imap.mail.yahoo.com",
	"icloud.com":     "imap.mail.me.com",
	"me.com":         "imap.mail.me.com",
	"mac.com":        "imap.mail.me.com",
}

// Resolve maps an account to its IMAP server. An explicit host or port
// on the account always wins; unknown domains synthesize imap.<domain>.
func Resolve(account model.MailAccount) Server {
	srv := Server{Port: DefaultPort, TLS: true}

	if account.Port > 0 {
		srv.Port = account.Port
	}

	if account.Host != "" {
		srv.Host = account.Host
		return srv
	}

	domain := account.Domain()
	if host, ok := hostTable[domain]; ok {
		srv.Host = host
		return srv
	}

	srv.Host = "imap." + domain
	return srv
}
