package ilink3

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Authenticator computes the HMAC-SHA256 signature iLink3 requires on
// Negotiate and Establish requests (spec.md §4.2). The user key is
// base64url-decoded once and reused as the HMAC secret for every request
// signed on behalf of a session.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator decodes userKeyBase64Url (standard base64url alphabet)
// into the raw HMAC secret. Keys are accepted with or without trailing
// '=' padding.
func NewAuthenticator(userKeyBase64Url string) (*Authenticator, error) {
	secret, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(userKeyBase64Url, "="))
	if err != nil {
		// Fall back to padded base64url in case the caller supplied padding.
		secret, err = base64.URLEncoding.DecodeString(userKeyBase64Url)
		if err != nil {
			return nil, fmt.Errorf("ilink3: decode user key: %w", err)
		}
	}
	return &Authenticator{secret: secret}, nil
}

// HMAC computes the 32-byte HMAC-SHA256 signature of canonicalRequest
// (encoded as UTF-8) using the decoded user key.
func (a *Authenticator) HMAC(canonicalRequest string) []byte {
	h := hmac.New(sha256.New, a.secret)
	h.Write([]byte(canonicalRequest))
	return h.Sum(nil)
}

// NegotiateCanonicalRequest builds the canonical multi-line request string
// signed for a Negotiate message: timestamp, uuid, sessionId, firmId,
// LF-separated with no trailing LF.
func NegotiateCanonicalRequest(timestamp int64, uuid uint64, sessionID, firmID string) string {
	return strings.Join([]string{
		strconv.FormatInt(timestamp, 10),
		strconv.FormatUint(uuid, 10),
		sessionID,
		firmID,
	}, "\n")
}

// EstablishCanonicalRequest builds the canonical multi-line request string
// signed for an Establish message.
func EstablishCanonicalRequest(
	timestamp int64,
	uuid uint64,
	sessionID, firmID string,
	tradingSystemName, tradingSystemVersion, tradingSystemVendor string,
	nextSentSeqNo uint64,
	keepAliveIntervalMs int32,
) string {
	return strings.Join([]string{
		strconv.FormatInt(timestamp, 10),
		strconv.FormatUint(uuid, 10),
		sessionID,
		firmID,
		tradingSystemName,
		tradingSystemVersion,
		tradingSystemVendor,
		strconv.FormatUint(nextSentSeqNo, 10),
		strconv.FormatInt(int64(keepAliveIntervalMs), 10),
	}, "\n")
}
