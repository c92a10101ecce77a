package ilink3

// SequenceStore is an optional, injectable persistence point for the
// last sent/received sequence numbers of a session keyed by sessionId.
// Durable persistence of sequence state is out of scope for the core
// (spec.md §1 Non-goals); this interface exists so a host application can
// back the "derive from last-seen" resolution (§6 "Initial sequence
// numbers") with its own storage without the core depending on any
// concrete storage technology.
type SequenceStore interface {
	// LastSent returns the last sequence number successfully sent for
	// sessionID, and whether a prior value exists.
	LastSent(sessionID string) (seqNo uint64, ok bool)

	// LastReceived returns the last in-order sequence number accepted for
	// sessionID, and whether a prior value exists.
	LastReceived(sessionID string) (seqNo uint64, ok bool)

	// SaveSent records the last sequence number sent for sessionID.
	SaveSent(sessionID string, seqNo uint64)

	// SaveReceived records the last in-order sequence number accepted for
	// sessionID.
	SaveReceived(sessionID string, seqNo uint64)
}

// resolveInitialSentSeqNo implements the "Initial sequence numbers" rule
// in spec.md §6.
func resolveInitialSentSeqNo(cfg *Config) uint64 {
	if !cfg.ReEstablishLastSession {
		return 1
	}
	if cfg.InitialSentSequenceNumber != AutomaticSequenceNumber {
		return uint64(cfg.InitialSentSequenceNumber)
	}
	if cfg.SequenceStore != nil {
		if last, ok := cfg.SequenceStore.LastSent(cfg.SessionID); ok {
			return last + 1
		}
	}
	return 1
}

// resolveInitialRecvSeqNo implements the "Initial sequence numbers" rule
// in spec.md §6.
func resolveInitialRecvSeqNo(cfg *Config) uint64 {
	if !cfg.ReEstablishLastSession {
		return 1
	}
	if cfg.InitialReceivedSequenceNumber != AutomaticSequenceNumber {
		return uint64(cfg.InitialReceivedSequenceNumber)
	}
	if cfg.SequenceStore != nil {
		if last, ok := cfg.SequenceStore.LastReceived(cfg.SessionID); ok {
			return last + 1
		}
	}
	return 1
}
