// Package exchange defines the signed request and response messages sent
// between clients and the ledger service, and how requests are
// authenticated.
package exchange

import (
	"errors"
	"math/big"
	"strings"

	"github.com/ardanlabs/sealedledger/foundation/blockchain/signature"
	"github.com/ardanlabs/sealedledger/foundation/validate"
)

// ErrAuthentication is returned when a request's fingerprint or signature
// doesn't check out. No further detail is given.
var ErrAuthentication = errors.New("authentication failed")

// =============================================================================

// Request is a signed request to operate on the ledger. Big integers are
// carried as decimal text.
type Request struct {
	ClientID    string      `json:"clientID" validate:"required"`
	E           string      `json:"e" validate:"required,numeric"`
	N           string      `json:"n" validate:"required,numeric"`
	RequestType RequestType `json:"requestType" validate:"required"`
	Var1        string      `json:"var1"`
	Var2        string      `json:"var2"`
	Signature   string      `json:"signature" validate:"required,numeric"`
}

// Validate checks the request is well formed.
func (r Request) Validate() error {
	return validate.Check(r)
}

// Response is the reply to a single request.
type Response struct {
	ResponseType string `json:"responseType"`
	Response     string `json:"response"`
}

// NewResponse constructs the response for a completed request.
func NewResponse(rt RequestType, text string) Response {
	return Response{
		ResponseType: rt.String(),
		Response:     text,
	}
}

// NewErrorResponse constructs the response for a failed request.
func NewErrorResponse(text string) Response {
	return Response{
		ResponseType: TypeError,
		Response:     text,
	}
}

// IsError reports whether the response describes a failed request.
func (r Response) IsError() bool {
	return r.ResponseType == TypeError
}

// =============================================================================

// CanonicalMessage returns the text that is signed for the request: the
// client id, e, n, request type, var1 and var2 concatenated in that order.
func CanonicalMessage(r Request) string {
	var sb strings.Builder
	sb.WriteString(r.ClientID)
	sb.WriteString(r.E)
	sb.WriteString(r.N)
	sb.WriteString(r.RequestType.String())
	sb.WriteString(r.Var1)
	sb.WriteString(r.Var2)
	return sb.String()
}

// NewRequest constructs a request signed by the keypair.
func NewRequest(kp signature.Keypair, rt RequestType, var1 string, var2 string) Request {
	req := Request{
		ClientID:    kp.ClientID(),
		E:           kp.E.String(),
		N:           kp.N.String(),
		RequestType: rt,
		Var1:        var1,
		Var2:        var2,
	}
	req.Signature = kp.Sign(CanonicalMessage(req))

	return req
}

// Authenticate checks the client id is the fingerprint of the request's
// public key and the signature covers the canonical message. Every failure
// is reported as ErrAuthentication.
func Authenticate(r Request) error {
	e, ok := parseInt(r.E)
	if !ok {
		return ErrAuthentication
	}

	n, ok := parseInt(r.N)
	if !ok {
		return ErrAuthentication
	}

	if signature.ClientID(e, n) != r.ClientID {
		return ErrAuthentication
	}

	if !signature.Verify(e, n, CanonicalMessage(r), r.Signature) {
		return ErrAuthentication
	}

	return nil
}

// parseInt accepts only positive integers written in canonical decimal form
// so the signed text and the verified values can't disagree.
func parseInt(s string) (*big.Int, bool) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() <= 0 || v.String() != s {
		return nil, false
	}
	return v, true
}
