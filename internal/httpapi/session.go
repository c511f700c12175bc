package httpapi

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// SessionHeader carries the opaque session token that scopes carts and
// orders. It is the only identity mechanism on this surface; no cookie or
// authenticated account is involved.
const SessionHeader = "X-Cart-Session"

func sessionID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(SessionHeader))
}

func mintSessionID() string {
	return uuid.NewString()
}
