package sign

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"

	domainErrors "github.com/yinshi/foodcourt/internal/domain/errors"
)

// SignatureKey is the reserved parameter carrying the signature itself; it is
// always excluded from canonicalization.
const SignatureKey = "sign"

// Canonicalize builds the string to be signed from a parameter set: empty
// values and the signature field are dropped, remaining keys are sorted
// lexicographically and joined as key=value pairs, then the shared secret is
// appended. The same canonical form is used for outbound signing and inbound
// verification.
func Canonicalize(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for key, value := range params {
		if value == "" || key == SignatureKey {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(params[key])
		b.WriteByte('&')
	}
	b.WriteString("key=")
	b.WriteString(secret)
	return b.String()
}

// Sign computes the uppercase hex digest of the canonicalized parameters.
func Sign(params map[string]string, secret string) string {
	sum := md5.Sum([]byte(Canonicalize(params, secret)))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Verify recomputes the signature over params and compares it against the
// carried sign field. Any mismatch, including a missing field, fails closed.
func Verify(params map[string]string, secret string) error {
	carried := params[SignatureKey]
	if carried == "" {
		return domainErrors.ErrUntrustedSignature
	}
	expected := Sign(params, secret)
	if !hmac.Equal([]byte(expected), []byte(strings.ToUpper(carried))) {
		return domainErrors.ErrUntrustedSignature
	}
	return nil
}
