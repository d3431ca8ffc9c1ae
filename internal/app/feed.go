package app

import (
	"helm/internal/transcript"
	"helm/internal/types"
)

// FeedController owns the task event subscription for the active session
// and folds its events into the transcript on each UI tick.
type FeedController struct {
	events           <-chan types.TaskEvent
	cancel           func()
	maxEventsPerTick int
}

func NewFeedController(maxEventsPerTick int) *FeedController {
	return &FeedController{maxEventsPerTick: maxEventsPerTick}
}

func (f *FeedController) Reset() {
	if f == nil {
		return
	}
	if f.cancel != nil {
		f.cancel()
	}
	f.cancel = nil
	f.events = nil
}

// SetStream replaces the current subscription. Any previous subscription
// is cancelled first so a session never has two open feeds.
func (f *FeedController) SetStream(ch <-chan types.TaskEvent, cancel func()) {
	if f == nil {
		return
	}
	if f.cancel != nil {
		f.cancel()
	}
	f.events = ch
	f.cancel = cancel
}

func (f *FeedController) Active() bool {
	return f != nil && f.events != nil
}

// ConsumeTick drains at most maxEventsPerTick pending events into tr in
// arrival order. closed reports that the feed channel ended and a
// resubscribe is needed.
func (f *FeedController) ConsumeTick(tr *transcript.Transcript) (changed bool, closed bool) {
	if f == nil || f.events == nil {
		return false, false
	}
	for i := 0; i < f.maxEventsPerTick; i++ {
		select {
		case event, ok := <-f.events:
			if !ok {
				f.events = nil
				f.cancel = nil
				return changed, true
			}
			if tr.Apply(event) {
				changed = true
			}
		default:
			return changed, false
		}
	}
	return changed, false
}
