package service

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Reference prefixes, one per ledger operation.
const (
	refPrefixFund     = "FUND"
	refPrefixWithdraw = "WTH"
	refPrefixTransfer = "TRF"
)

const refTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReference builds a display reference of the form
// <prefix>_<unix-millis>_<random-token>. Both legs of a transfer share a
// single reference so the pairing survives in the ledger.
func GenerateReference(prefix string) string {
	token := make([]byte, 8)
	rand.Read(token) //nolint:errcheck
	for i := range token {
		token[i] = refTokenAlphabet[int(token[i])%len(refTokenAlphabet)]
	}
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), token)
}
