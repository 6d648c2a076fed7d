package comm

import (
	"context"
	"fmt"
)

// Stats counts the traffic of one endpoint.
type Stats struct {
	Sent          int
	Received      int
	CellsSent     int
	CellsReceived int
}

// Endpoint is a rank's only handle on the world. It is owned by the rank's
// goroutine and must not be shared.
type Endpoint struct {
	world   *World
	rank    Rank
	pending []Envelope
	stats   Stats
}

// Rank returns the rank this endpoint belongs to.
func (e *Endpoint) Rank() Rank { return e.rank }

// Size returns the number of ranks in the world.
func (e *Endpoint) Size() int { return e.world.size }

// Stats returns the traffic counters so far.
func (e *Endpoint) Stats() Stats { return e.stats }

// Send copies payload into a message for rank to and hands it to the
// transport. It blocks only while the destination inbox is full.
func (e *Endpoint) Send(ctx context.Context, to Rank, tag Tag, payload []int32) error {
	if tag < 0 {
		return fmt.Errorf("comm: tag %d is reserved", tag)
	}
	return e.send(ctx, to, tag, payload)
}

func (e *Endpoint) send(ctx context.Context, to Rank, tag Tag, payload []int32) error {
	if to < 0 || int(to) >= e.world.size {
		return fmt.Errorf("comm: rank %d sending to unknown rank %d", e.rank, to)
	}
	msg := Envelope{Source: e.rank, Tag: tag, Payload: append([]int32(nil), payload...)}
	select {
	case e.world.inboxes[to] <- msg:
		e.stats.Sent++
		e.stats.CellsSent += len(payload)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv blocks until a message from source (or AnySource) carrying tag (or
// AnyTag) is available and returns it. Messages that arrive meanwhile but do
// not match are kept, in order, for later receives.
func (e *Endpoint) Recv(ctx context.Context, source Rank, tag Tag) (Envelope, error) {
	if tag < AnyTag {
		return Envelope{}, fmt.Errorf("comm: tag %d is reserved", tag)
	}
	return e.recv(ctx, source, tag)
}

func (e *Endpoint) recv(ctx context.Context, source Rank, tag Tag) (Envelope, error) {
	for i, msg := range e.pending {
		if matches(msg, source, tag) {
			e.pending = append(e.pending[:i], e.pending[i+1:]...)
			e.countReceived(msg)
			return msg, nil
		}
	}
	inbox := e.world.inboxes[e.rank]
	for {
		select {
		case msg := <-inbox:
			if matches(msg, source, tag) {
				e.countReceived(msg)
				return msg, nil
			}
			e.pending = append(e.pending, msg)
		case <-ctx.Done():
			return Envelope{}, ctx.Err()
		}
	}
}

func (e *Endpoint) countReceived(msg Envelope) {
	e.stats.Received++
	e.stats.CellsReceived += len(msg.Payload)
}

func matches(msg Envelope, source Rank, tag Tag) bool {
	if source != AnySource && msg.Source != source {
		return false
	}
	if tag == AnyTag {
		return msg.Tag >= 0
	}
	return msg.Tag == tag
}

// Gather collects local from every rank at root. At root it returns the
// buffers indexed by rank; elsewhere it returns nil. Every rank must call
// Gather with the same root, and root does not return before every buffer has
// arrived.
func (e *Endpoint) Gather(ctx context.Context, root Rank, local []int32) ([][]int32, error) {
	if root < 0 || int(root) >= e.world.size {
		return nil, fmt.Errorf("comm: gather to unknown rank %d", root)
	}
	if e.rank != root {
		return nil, e.send(ctx, root, gatherTag, local)
	}

	parts := make([][]int32, e.world.size)
	parts[root] = append([]int32(nil), local...)
	for r := 0; r < e.world.size; r++ {
		if Rank(r) == root {
			continue
		}
		msg, err := e.recv(ctx, Rank(r), gatherTag)
		if err != nil {
			return nil, fmt.Errorf("comm: gather from rank %d: %w", r, err)
		}
		parts[r] = msg.Payload
	}
	return parts, nil
}
