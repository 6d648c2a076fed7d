package strategy

import (
	"context"
	"time"

	"github.com/agbru/mandelpart/internal/comm"
	"github.com/agbru/mandelpart/internal/kernel"
	"github.com/agbru/mandelpart/internal/logging"
	"github.com/agbru/mandelpart/internal/scheduler"
)

// MasterWorker schedules rows dynamically: the coordinator keeps every worker
// busy with small tasks and places results by their offset.
type MasterWorker struct{}

func (MasterWorker) Name() string        { return MasterWorkerName }
func (MasterWorker) Description() string { return "Dynamic master/worker" }

func (MasterWorker) Run(ctx context.Context, plane kernel.Plane, opts Options) (*Result, error) {
	r, err := newRun(MasterWorkerName, plane, opts)
	if err != nil {
		return nil, err
	}
	world, err := r.world()
	if err != nil {
		return nil, err
	}
	granularity := opts.granularity()

	hooks := scheduler.Hooks{
		Dispatched: func(comm.Rank, scheduler.Task) {
			if r.observer != nil {
				r.observer.TaskDispatched(MasterWorkerName)
			}
		},
		Completed: func(worker comm.Rank, task scheduler.Task, latency time.Duration) {
			r.computed(worker, task.Rows)
			if r.observer != nil {
				r.observer.TaskCompleted(MasterWorkerName, latency)
			}
		},
	}

	var report *scheduler.Report
	err = world.Run(ctx, func(ctx context.Context, ep *comm.Endpoint) error {
		if ep.Rank() == comm.Root {
			var err error
			report, err = scheduler.RunCoordinator(ctx, ep, plane, granularity, hooks)
			return err
		}
		w := scheduler.NewWorker(ep, plane, granularity)
		err := w.Run(ctx)
		r.log.Debug("worker done",
			logging.Int("rank", int(ep.Rank())),
			logging.Int("tasks", w.Tasks()),
			logging.Int("rows", w.RowsComputed()),
			logging.String("busy", w.Busy().String()))
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.result(report.Grid, report.CommTime, report.Dispatched)
}
