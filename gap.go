package ilink3

// retransmitChunk is one pending (fromSeqNo, msgCount) request in the
// gap-workflow FIFO (spec.md §3 "retransmitQueue", §4.4 "Gap workflow").
type retransmitChunk struct {
	fromSeqNo uint64
	msgCount  uint64
}

// retransmitQueue is a FIFO of chunks not yet requested. The in-flight
// chunk is never stored here (spec.md §9 "Retransmit queue head") — its
// tail is tracked separately as Session.retransmitFillSeqNo.
type retransmitQueue struct {
	chunks []retransmitChunk
}

func (q *retransmitQueue) push(fromSeqNo, msgCount uint64) {
	q.chunks = append(q.chunks, retransmitChunk{fromSeqNo, msgCount})
}

func (q *retransmitQueue) empty() bool {
	return len(q.chunks) == 0
}

// pop removes and returns the head of the queue.
func (q *retransmitQueue) pop() (retransmitChunk, bool) {
	if len(q.chunks) == 0 {
		return retransmitChunk{}, false
	}
	c := q.chunks[0]
	q.chunks = q.chunks[1:]
	return c, true
}

// peek returns the head of the queue without removing it.
func (q *retransmitQueue) peek() (retransmitChunk, bool) {
	if len(q.chunks) == 0 {
		return retransmitChunk{}, false
	}
	return q.chunks[0], true
}

// chunkGap splits a gap of totalMsgCount messages starting at fromSeqNo
// into chunks no larger than limit, in FIFO order (spec.md §4.4 step 1 and
// "push remaining chunks").
func chunkGap(fromSeqNo, totalMsgCount uint64, limit uint32) []retransmitChunk {
	if totalMsgCount == 0 {
		return nil
	}
	var chunks []retransmitChunk
	remaining := totalMsgCount
	next := fromSeqNo
	lim := uint64(limit)
	for remaining > 0 {
		n := remaining
		if n > lim {
			n = lim
		}
		chunks = append(chunks, retransmitChunk{fromSeqNo: next, msgCount: n})
		next += n
		remaining -= n
	}
	return chunks
}
