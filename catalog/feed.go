package catalog

import (
	"context"
	"sync"
)

// Feed fans catalog snapshots out to observers. Each subscriber gets a
// buffered channel with latest-wins delivery: a slow reader skips
// intermediate snapshots but always converges on the newest one. Published
// slices must not be mutated afterwards by the publisher.
type Feed struct {
	mu     sync.Mutex
	subs   map[int]chan []Item
	nextID int
	last   []Item
	primed bool
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[int]chan []Item)}
}

// Publish replaces the current snapshot and notifies all subscribers.
func (f *Feed) Publish(items []Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = items
	f.primed = true
	for _, ch := range f.subs {
		send(ch, items)
	}
}

// Subscribe registers an observer. If a snapshot has already been
// published it is replayed immediately. The channel closes when ctx is
// cancelled.
func (f *Feed) Subscribe(ctx context.Context) <-chan []Item {
	ch := make(chan []Item, 1)

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	if f.primed {
		send(ch, f.last)
	}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
		close(ch)
	}()
	return ch
}

// send delivers latest-wins: if the subscriber has not consumed the
// previous snapshot it is dropped in favor of the new one.
func send(ch chan []Item, items []Item) {
	select {
	case ch <- items:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- items:
		default:
		}
	}
}
