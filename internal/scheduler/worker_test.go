package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/agbru/mandelpart/internal/comm"
	"github.com/agbru/mandelpart/internal/kernel"
)

type sentMessage struct {
	to  comm.Rank
	env comm.Envelope
}

// scriptedTransport replays a fixed inbox and records what is sent.
type scriptedTransport struct {
	rank  comm.Rank
	size  int
	inbox []comm.Envelope
	sent  []sentMessage
}

func (s *scriptedTransport) Rank() comm.Rank { return s.rank }
func (s *scriptedTransport) Size() int       { return s.size }

func (s *scriptedTransport) Send(_ context.Context, to comm.Rank, tag comm.Tag, payload []int32) error {
	s.sent = append(s.sent, sentMessage{to: to, env: comm.Envelope{Source: s.rank, Tag: tag, Payload: append([]int32(nil), payload...)}})
	return nil
}

func (s *scriptedTransport) Recv(_ context.Context, _ comm.Rank, _ comm.Tag) (comm.Envelope, error) {
	if len(s.inbox) == 0 {
		return comm.Envelope{}, errors.New("inbox exhausted")
	}
	env := s.inbox[0]
	s.inbox = s.inbox[1:]
	return env, nil
}

func envelope(m Message) comm.Envelope {
	tag, payload := m.Encode()
	return comm.Envelope{Source: comm.Root, Tag: tag, Payload: payload}
}

func TestWorkerServesUntilFinish(t *testing.T) {
	t.Parallel()
	plane, _ := kernel.NewPlane(5, 3)
	tr := &scriptedTransport{rank: 1, size: 2, inbox: []comm.Envelope{
		envelope(Data(0)),
		envelope(Data(4)),
		envelope(Finish(5)),
	}}
	w := NewWorker(tr, plane, 2)
	if w.State() != StateIdle {
		t.Fatalf("new worker in state %s", w.State())
	}

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if w.State() != StateFinished {
		t.Errorf("state = %s, want finished", w.State())
	}
	if w.Tasks() != 2 || w.RowsComputed() != 3 {
		t.Errorf("tasks = %d rows = %d, want 2 and 3", w.Tasks(), w.RowsComputed())
	}
	if len(tr.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(tr.sent))
	}

	first, err := Decode(tr.sent[0].env, plane.Width)
	if err != nil {
		t.Fatal(err)
	}
	if tr.sent[0].to != comm.Root || first.Tag != TagResult || first.Offset != 0 || first.Rows.Rows() != 2 {
		t.Errorf("first reply = %v to rank %d", first, tr.sent[0].to)
	}
	want := make([]int32, plane.Width)
	plane.ComputeRow(1, want)
	for c, v := range first.Rows.Row(1) {
		if v != want[c] {
			t.Fatalf("row 1 col %d = %d, want %d", c, v, want[c])
		}
	}

	// The last task is clipped to the grid.
	last, _ := Decode(tr.sent[1].env, plane.Width)
	if last.Offset != 4 || last.Rows.Rows() != 1 {
		t.Errorf("last reply = %v, want offset 4 with 1 row", last)
	}
}

func TestWorkerProtocolErrors(t *testing.T) {
	t.Parallel()
	plane, _ := kernel.NewPlane(4, 2)
	rows := envelope(Result(0, rowsOf(1)))
	rows.Payload = rows.Payload[:1]

	tests := []struct {
		name string
		msg  comm.Envelope
	}{
		{"offset beyond grid", envelope(Data(4))},
		{"negative offset", envelope(Data(-1))},
		{"result sent to worker", rows},
		{"malformed", comm.Envelope{Tag: comm.Tag(TagData)}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr := &scriptedTransport{rank: 1, size: 2, inbox: []comm.Envelope{tt.msg}}
			err := NewWorker(tr, plane, 1).Run(context.Background())
			var perr *ProtocolError
			if !errors.As(err, &perr) {
				t.Fatalf("error = %v, want *ProtocolError", err)
			}
			if len(tr.sent) != 0 {
				t.Errorf("worker replied %d times", len(tr.sent))
			}
		})
	}
}

func TestWorkerPropagatesTransportErrors(t *testing.T) {
	t.Parallel()
	plane, _ := kernel.NewPlane(2, 2)
	tr := &scriptedTransport{rank: 1, size: 2}
	if err := NewWorker(tr, plane, 1).Run(context.Background()); err == nil {
		t.Fatal("expected the exhausted inbox error")
	}
}
