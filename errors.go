package ilink3

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates the configuration is invalid.
	ErrInvalidConfig = errors.New("ilink3: invalid configuration")

	// ErrInvalidState indicates tryClaim or terminate was called outside
	// {Established, AwaitingKeepalive}. It does not mutate session state.
	ErrInvalidState = errors.New("ilink3: operation invalid in current session state")

	// ErrNegotiateTimeout indicates no NegotiationResponse arrived before
	// the resend/retry window elapsed twice.
	ErrNegotiateTimeout = errors.New("ilink3: timed out waiting for negotiation response")

	// ErrEstablishTimeout indicates no EstablishmentAck arrived before the
	// resend/retry window elapsed twice.
	ErrEstablishTimeout = errors.New("ilink3: timed out waiting for establishment ack")

	// ErrEchoMismatch indicates a NegotiationResponse/EstablishmentAck
	// echoed a uuid or requestTimestamp that does not match what was sent.
	ErrEchoMismatch = errors.New("ilink3: response echoed unexpected uuid or requestTimestamp")

	// ErrNegotiateRejected indicates the peer sent a NegotiationReject.
	ErrNegotiateRejected = errors.New("ilink3: negotiation rejected")

	// ErrEstablishRejected indicates the peer sent an EstablishmentReject.
	ErrEstablishRejected = errors.New("ilink3: establishment rejected")

	// ErrLowSequenceNumber indicates the peer sent a sequence number below
	// what was expected; fatal to the session.
	ErrLowSequenceNumber = errors.New("ilink3: received sequence number below expected")

	// ErrKeepaliveExpired indicates two keepalive intervals elapsed with no
	// inbound message.
	ErrKeepaliveExpired = errors.New("ilink3: keepalive interval expired without a message")

	// ErrCryptoFailure indicates the HMAC primitive failed to initialize or
	// compute a signature. Always fatal to the session.
	ErrCryptoFailure = errors.New("ilink3: HMAC computation failed")
)

// SessionError wraps a fatal session error with the uuid and state in
// which it occurred, so callers and logs can tell sessions apart without
// string-matching the message.
type SessionError struct {
	UUID  uint64
	State SessionState
	Err   error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("ilink3: session %d in state %s: %v", e.UUID, e.State, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

func newSessionError(uuid uint64, state SessionState, err error) *SessionError {
	return &SessionError{UUID: uuid, State: state, Err: err}
}
