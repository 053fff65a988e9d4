package app

import (
	"context"
	"log"

	"github.com/ayusman/mudra/internal/store"
)

// Observer receives every frame result on the loop goroutine. It must not block.
type Observer interface {
	Observe(res FrameResult)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(res FrameResult)

// Observe calls f(res).
func (f ObserverFunc) Observe(res FrameResult) {
	f(res)
}

// LabelChanges returns an Observer that calls fn whenever the label of
// frames with a hand changes. The first call happens on the first hand seen.
func LabelChanges(fn func(label string)) Observer {
	last := ""
	return ObserverFunc(func(res FrameResult) {
		if !res.Hand {
			return
		}
		if label := string(res.Label); label != last {
			last = label
			fn(label)
		}
	})
}

// Journal records effects and dispatch failures into the event journal.
type Journal struct {
	events *store.EventRepository
}

// NewJournal creates a Journal writing to events.
func NewJournal(events *store.EventRepository) *Journal {
	return &Journal{events: events}
}

// Observe writes one event per effect, or one error event when the frame's
// dispatch failed. Frames without either are not recorded.
func (j *Journal) Observe(res FrameResult) {
	ctx := context.Background()

	for _, e := range res.Effects {
		ev := &store.Event{
			Frame:     res.Seq,
			Label:     string(res.Label),
			Kind:      string(e.Kind),
			Level:     e.Level,
			Ticks:     e.Ticks,
			Target:    e.Target,
			VolumeBar: res.Session.VolumeBar,
			CreatedAt: res.Time,
		}
		if err := j.events.Create(ctx, ev); err != nil {
			log.Printf("Error recording event: %v", err)
		}
	}

	if res.Error != "" && res.Hand {
		ev := &store.Event{
			Frame:     res.Seq,
			Label:     string(res.Label),
			Kind:      store.KindError,
			Error:     res.Error,
			VolumeBar: res.Session.VolumeBar,
			CreatedAt: res.Time,
		}
		if err := j.events.Create(ctx, ev); err != nil {
			log.Printf("Error recording event: %v", err)
		}
	}
}
