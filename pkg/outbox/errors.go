package outbox

import (
	"errors"
	"unicode/utf8"
)

// ErrTxRequired is returned by writes that must join the caller's transaction.
var ErrTxRequired = errors.New("outbox: transaction required")

// maxErrorLen bounds last_error and the DLQ error_message columns, in bytes.
const maxErrorLen = 1024

// clipError truncates msg to maxErrorLen without splitting a UTF-8 sequence.
func clipError(msg string) string {
	if len(msg) <= maxErrorLen {
		return msg
	}
	cut := maxErrorLen
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut]
}
