package cli

import (
	"io"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/orchestrator"
)

const progressUpdateFrequency = 100 * time.Millisecond

// NoProgress will be set by the main package.
var NoProgress *bool

// progressView renders progress events as one tracker per phase. With
// rendering disabled the events only reach the debug log.
type progressView struct {
	events   chan orchestrator.Event
	writer   progress.Writer
	trackers map[string]*progress.Tracker
	wg       sync.WaitGroup
}

func startProgress(out io.Writer) *progressView {
	v := &progressView{
		events:   make(chan orchestrator.Event, orchestrator.DefaultLimit),
		trackers: make(map[string]*progress.Tracker),
	}
	if NoProgress == nil || !*NoProgress {
		v.writer = progress.NewWriter()
		v.writer.SetOutputWriter(out)
		v.writer.SetAutoStop(false)
		v.writer.SetUpdateFrequency(progressUpdateFrequency)
		v.writer.SetTrackerPosition(progress.PositionRight)
		v.writer.SetMessageLength(32)
		go v.writer.Render()
		for !v.writer.IsRenderInProgress() {
			time.Sleep(time.Millisecond)
		}
	}

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		for e := range v.events {
			v.handle(e)
		}
	}()
	return v
}

// Events is the channel handed to the operations.
func (v *progressView) Events() chan<- orchestrator.Event {
	return v.events
}

func (v *progressView) handle(e orchestrator.Event) {
	logger.Debug("progress", logger.Fields{"phase": e.Phase, "done": e.Done, "total": e.Total, "message": e.Message})
	if v.writer == nil {
		return
	}

	t, ok := v.trackers[e.Phase]
	if !ok {
		t = &progress.Tracker{Message: e.Phase, Total: int64(e.Total), Units: progress.UnitsDefault}
		v.trackers[e.Phase] = t
		v.writer.AppendTracker(t)
	}
	if e.Total > 0 {
		t.UpdateTotal(int64(e.Total))
		t.SetValue(int64(e.Done))
	}
	if e.Message != "" {
		t.UpdateMessage(e.Phase + ": " + e.Message)
	}
	if e.Finished {
		t.MarkAsDone()
	}
}

// Stop drains the pending events and stops rendering. Trackers still running
// are marked errored when failed is set and done otherwise.
func (v *progressView) Stop(failed bool) {
	close(v.events)
	v.wg.Wait()
	if v.writer == nil {
		return
	}
	for _, t := range v.trackers {
		if t.IsDone() {
			continue
		}
		if failed {
			t.MarkAsErrored()
		} else {
			t.MarkAsDone()
		}
	}
	// Render may not have installed its cancel func yet, so keep stopping.
	for v.writer.IsRenderInProgress() {
		v.writer.Stop()
		time.Sleep(time.Millisecond)
	}
}
