package comm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/tedsuo/ifrit"
	"github.com/tedsuo/ifrit/grouper"

	apperrors "github.com/agbru/mandelpart/internal/errors"
	"github.com/agbru/mandelpart/internal/logging"
)

// Rank identifies a process of a World. Rank 0 is the coordinator.
type Rank int

const (
	// Root is the coordinator rank.
	Root Rank = 0
	// AnySource makes Recv accept a message from any rank.
	AnySource Rank = -1
)

// Tag labels a message. Non-negative tags belong to callers; negative tags
// are reserved for collectives.
type Tag int

const (
	// AnyTag makes Recv accept any caller tag.
	AnyTag Tag = -1

	gatherTag Tag = -2
)

// Envelope is a message as it travels between ranks.
type Envelope struct {
	Source  Rank
	Tag     Tag
	Payload []int32
}

// Program is the code a rank runs. It must return once its protocol is
// complete or ctx is done.
type Program func(ctx context.Context, ep *Endpoint) error

// World is a fixed-size group of ranks connected by inboxes.
type World struct {
	size    int
	inboxes []chan Envelope
	logger  logging.Logger
}

// DefaultInboxCapacity is the buffer of a non-root inbox. The root inbox
// always holds at least one message per rank so a gather never blocks its
// senders.
const DefaultInboxCapacity = 2

// Option configures a World.
type Option func(*worldOptions)

type worldOptions struct {
	inboxCapacity int
	logger        logging.Logger
}

// WithInboxCapacity sets how many undelivered messages a non-root inbox
// holds before Send blocks. The root inbox is never smaller than the world.
func WithInboxCapacity(n int) Option {
	return func(o *worldOptions) { o.inboxCapacity = n }
}

// WithLogger attaches a logger for rank lifecycle events.
func WithLogger(l logging.Logger) Option {
	return func(o *worldOptions) { o.logger = l }
}

// NewWorld creates a world of size ranks. Memory grows linearly with size.
func NewWorld(size int, opts ...Option) (*World, error) {
	if size <= 0 {
		return nil, fmt.Errorf("comm: world size must be positive, got %d", size)
	}
	o := worldOptions{inboxCapacity: DefaultInboxCapacity, logger: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	o.inboxCapacity = max(o.inboxCapacity, 1)

	w := &World{size: size, inboxes: make([]chan Envelope, size), logger: o.logger}
	w.inboxes[Root] = make(chan Envelope, max(size, o.inboxCapacity))
	for i := 1; i < size; i++ {
		w.inboxes[i] = make(chan Envelope, o.inboxCapacity)
	}
	return w, nil
}

// Size returns the number of ranks.
func (w *World) Size() int { return w.size }

// InboxCapacity returns the buffer size of rank's inbox.
func (w *World) InboxCapacity(rank Rank) int { return cap(w.inboxes[rank]) }

// Run starts program on every rank as a member of a parallel ifrit group and
// blocks until all ranks have exited. A failing rank makes the group
// interrupt its peers, which cancels the context their programs see. The
// returned error names the rank that failed first for a reason other than
// that cancellation.
func (w *World) Run(ctx context.Context, program Program) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rankCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var settled sync.WaitGroup
	settled.Add(w.size)
	allSettled := make(chan struct{})
	go func() {
		settled.Wait()
		close(allSettled)
	}()

	members := make(grouper.Members, w.size)
	ranks := make(map[string]Rank, w.size)
	for r := 0; r < w.size; r++ {
		ep := &Endpoint{world: w, rank: Rank(r)}
		name := "rank-" + strconv.Itoa(r)
		ranks[name] = ep.rank
		members[r] = grouper.Member{Name: name, Runner: w.rankRunner(rankCtx, cancel, ep, program, &settled, allSettled)}
	}

	group := ifrit.Background(grouper.NewParallel(os.Interrupt, members))
	return rootCause(<-group.Wait(), ranks)
}

// rankRunner wraps program as a group member. A rank whose program succeeds
// stays in the group until every program has returned: the group interrupts
// all members as soon as one exits, and peers still exchanging messages must
// not see that as a failure.
func (w *World) rankRunner(ctx context.Context, cancel context.CancelFunc, ep *Endpoint, program Program, settled *sync.WaitGroup, allSettled <-chan struct{}) ifrit.Runner {
	return ifrit.RunFunc(func(signals <-chan os.Signal, ready chan<- struct{}) error {
		log := w.logger
		log.Debug("rank started", logging.Int("rank", int(ep.rank)), logging.Int("size", w.size))
		close(ready)

		done := make(chan error, 1)
		go func() { done <- program(ctx, ep) }()

		var err error
		select {
		case err = <-done:
		case <-signals:
			cancel()
			err = <-done
		}
		settled.Done()
		log.Debug("rank exited",
			logging.Int("rank", int(ep.rank)),
			logging.Int("sent", ep.stats.Sent),
			logging.Int("received", ep.stats.Received),
			logging.Err(err))
		if err != nil {
			cancel()
			return err
		}

		select {
		case <-allSettled:
		case <-signals:
		}
		return nil
	})
}

// rootCause picks the failure to report from the group's exit trace,
// preferring the root cause over the cancellations it triggered.
func rootCause(err error, ranks map[string]Rank) error {
	var trace grouper.ErrorTrace
	if !errors.As(err, &trace) {
		return err
	}
	var first error
	for _, exit := range trace {
		if exit.Err == nil {
			continue
		}
		if first == nil || (isCancellation(first) && !isCancellation(exit.Err)) {
			first = apperrors.RankError{Rank: int(ranks[exit.Member.Name]), Cause: exit.Err}
		}
	}
	return first
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
