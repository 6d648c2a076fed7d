package scheduler

import (
	"context"
	"fmt"

	"github.com/agbru/mandelpart/internal/comm"
	"github.com/agbru/mandelpart/internal/grid"
)

// Tag is the kind of a protocol message.
type Tag int

const (
	// TagResult carries computed rows from a worker to the coordinator.
	TagResult Tag = 0
	// TagData assigns a task to a worker.
	TagData Tag = 1
	// TagFinish tells a worker to exit.
	TagFinish Tag = 2
)

func (t Tag) String() string {
	switch t {
	case TagResult:
		return "result"
	case TagData:
		return "data"
	case TagFinish:
		return "finish"
	default:
		return fmt.Sprintf("tag(%d)", int(t))
	}
}

// Message is one protocol message. Rows is set for results only.
type Message struct {
	Tag    Tag
	Offset int
	Rows   *grid.Buffer
}

// Data builds a task assignment starting at offset.
func Data(offset int) Message { return Message{Tag: TagData, Offset: offset} }

// Finish builds a termination message. The offset is informational.
func Finish(offset int) Message { return Message{Tag: TagFinish, Offset: offset} }

// Result builds a worker reply.
func Result(offset int, rows *grid.Buffer) Message {
	return Message{Tag: TagResult, Offset: offset, Rows: rows}
}

func (m Message) String() string {
	if m.Tag == TagResult && m.Rows != nil {
		return fmt.Sprintf("%s(offset=%d, rows=%d)", m.Tag, m.Offset, m.Rows.Rows())
	}
	return fmt.Sprintf("%s(offset=%d)", m.Tag, m.Offset)
}

// Encode lays the message out on the wire: the offset first, then the row
// cells for results.
func (m Message) Encode() (comm.Tag, []int32) {
	n := 1
	if m.Rows != nil {
		n += len(m.Rows.Cells())
	}
	payload := make([]int32, 1, n)
	payload[0] = int32(m.Offset)
	if m.Tag == TagResult && m.Rows != nil {
		payload = append(payload, m.Rows.Cells()...)
	}
	return comm.Tag(m.Tag), payload
}

// Decode parses an envelope received on a grid of the given width.
func Decode(env comm.Envelope, width int) (Message, error) {
	if len(env.Payload) == 0 {
		return Message{}, fmt.Errorf("scheduler: empty %s payload from rank %d", Tag(env.Tag), env.Source)
	}
	offset := int(env.Payload[0])
	switch tag := Tag(env.Tag); tag {
	case TagData, TagFinish:
		if len(env.Payload) != 1 {
			return Message{}, fmt.Errorf("scheduler: %s message from rank %d has %d extra values", tag, env.Source, len(env.Payload)-1)
		}
		return Message{Tag: tag, Offset: offset}, nil
	case TagResult:
		rows, err := grid.BufferFromCells(width, env.Payload[1:])
		if err != nil {
			return Message{}, fmt.Errorf("scheduler: result from rank %d: %w", env.Source, err)
		}
		return Result(offset, rows), nil
	default:
		return Message{}, fmt.Errorf("scheduler: unknown %s from rank %d", tag, env.Source)
	}
}

// Transport is the point-to-point messaging the protocol needs.
// *comm.Endpoint implements it.
type Transport interface {
	Rank() comm.Rank
	Size() int
	Send(ctx context.Context, to comm.Rank, tag comm.Tag, payload []int32) error
	Recv(ctx context.Context, source comm.Rank, tag comm.Tag) (comm.Envelope, error)
}

var _ Transport = (*comm.Endpoint)(nil)

func send(ctx context.Context, t Transport, to comm.Rank, m Message) error {
	tag, payload := m.Encode()
	return t.Send(ctx, to, tag, payload)
}
