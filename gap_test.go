package ilink3

import (
	"reflect"
	"testing"
)

func TestChunkGap_SplitsIntoBoundedChunks(t *testing.T) {
	got := chunkGap(10, 7, 3)
	want := []retransmitChunk{
		{fromSeqNo: 10, msgCount: 3},
		{fromSeqNo: 13, msgCount: 3},
		{fromSeqNo: 16, msgCount: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("chunkGap(10, 7, 3) = %+v, want %+v", got, want)
	}
}

func TestChunkGap_FitsInSingleChunk(t *testing.T) {
	got := chunkGap(1, 5, 1000)
	want := []retransmitChunk{{fromSeqNo: 1, msgCount: 5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("chunkGap(1, 5, 1000) = %+v, want %+v", got, want)
	}
}

func TestChunkGap_ZeroCountYieldsNoChunks(t *testing.T) {
	if got := chunkGap(1, 0, 10); got != nil {
		t.Errorf("chunkGap(1, 0, 10) = %+v, want nil", got)
	}
}

func TestChunkGap_ExactMultipleOfLimit(t *testing.T) {
	got := chunkGap(1, 6, 2)
	want := []retransmitChunk{
		{fromSeqNo: 1, msgCount: 2},
		{fromSeqNo: 3, msgCount: 2},
		{fromSeqNo: 5, msgCount: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("chunkGap(1, 6, 2) = %+v, want %+v", got, want)
	}
}

func TestRetransmitQueue_FIFOOrder(t *testing.T) {
	var q retransmitQueue
	if !q.empty() {
		t.Fatal("new retransmitQueue must be empty")
	}
	q.push(1, 3)
	q.push(4, 2)

	peeked, ok := q.peek()
	if !ok || peeked != (retransmitChunk{1, 3}) {
		t.Errorf("peek() = (%+v, %v), want ({1 3}, true)", peeked, ok)
	}

	first, ok := q.pop()
	if !ok || first != (retransmitChunk{1, 3}) {
		t.Errorf("pop() = (%+v, %v), want ({1 3}, true)", first, ok)
	}
	if q.empty() {
		t.Fatal("queue must still hold one chunk")
	}

	second, ok := q.pop()
	if !ok || second != (retransmitChunk{4, 2}) {
		t.Errorf("pop() = (%+v, %v), want ({4 2}, true)", second, ok)
	}
	if !q.empty() {
		t.Fatal("queue must be empty after draining both chunks")
	}

	if _, ok := q.pop(); ok {
		t.Error("pop() on an empty queue: want ok=false")
	}
}
