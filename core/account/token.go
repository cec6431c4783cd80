package account

import (
	"crypto/sha256"
	"strings"
	"time"

	"github.com/google/uuid"
)

var nowFunc = time.Now // mockable

// makeResetToken generates a random opaque password reset token.
// Only its hash may be persisted; the raw token travels out-of-band.
func makeResetToken() (raw string, hash []byte) {
	raw = strings.ReplaceAll(uuid.NewString(), "-", "")
	return raw, hashResetToken(raw)
}

func hashResetToken(raw string) []byte {
	sum := sha256.Sum256([]byte(raw))
	return sum[:]
}
