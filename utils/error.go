package utils

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// Messages returned by Solana RPC nodes for slots they cannot serve
const (
	SKIPPED_SLOT     = "was skipped"
	MISSING_SLOT     = "missing in long-term storage"
	UNAVAILABLE_SLOT = "not available"
	CLEANED_SLOT     = "cleaned up" // slots too early for the node
)

// Rate-limit markers in error text. A bare "429" is not one: slots and addresses contain it.
var rateLimitMarkers = []string{
	"too many requests",
	"status 429",
	"status code: 429",
	"429 too many",
}

// IsRateLimited reports whether err is a 429 from an HTTP collaborator or an RPC transport.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests
	}
	var httpErr *jsonrpc.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code == http.StatusTooManyRequests
	}
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) && rpcErr.Code == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsUnavailableUnit reports whether err says the slot was skipped or pruned by the node.
func IsUnavailableUnit(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{SKIPPED_SLOT, MISSING_SLOT, UNAVAILABLE_SLOT, CLEANED_SLOT} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
