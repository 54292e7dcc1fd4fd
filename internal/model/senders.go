package model

import "strings"

// KnownTransactionSenders lists sender addresses and domains that
// regional banks and payment processors use for transaction
// notifications. The list is static configuration injected into the
// search builder, never mutated at runtime.
var KnownTransactionSenders = []string{
	"notificaciones@notificacionesbaccr.com",
	"bancobcr.com",
	"mensajero@bncr.fi.cr",
	"notificaciones@davivienda.cr",
	"scotiabank.com",
	"promerica.fi.cr",
	"bancopopular.fi.cr",
	"service@paypal.com",
	"no-reply@stripe.com",
}

// TransactionKeywords is the bilingual transaction vocabulary used for
// server-side text searches.
var TransactionKeywords = []string{
	"cargo",
	"compra",
	"pago",
	"retiro",
	"transferencia",
	"transaction",
	"payment",
	"purchase",
	"withdrawal",
	"charge",
}

// promotionalMarkers flag senders whose mail is marketing rather than
// transaction notifications. Matching is substring-based against the
// lower-cased sender address.
var promotionalMarkers = []string{
	"promo",
	"promocion",
	"marketing",
	"newsletter",
	"ofertas",
	"publicidad",
	"offers",
}

// IsPromotionalSender reports whether a sender address looks
// promotional. Emails from such senders are skipped at persistence time
// without touching the ledger.
func IsPromotionalSender(sender string) bool {
	s := strings.ToLower(sender)
	for _, marker := range promotionalMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
