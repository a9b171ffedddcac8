// Package pipeline derives a live filtered view of a catalog store. The
// catalog snapshot and the search term are one combined input: either
// change recomputes the whole view atomically, so readers never see a list
// filtered against a stale term.
package pipeline

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shozoko/bookshop/catalog"
)

// View is one atomic derived value: the filtered list, the term it was
// filtered with, and whether the first catalog snapshot is still pending.
type View struct {
	Items   []catalog.Item
	Term    string
	Loading bool
}

type Pipeline struct {
	store catalog.Store
	log   zerolog.Logger

	mu      sync.Mutex
	catalog []catalog.Item
	term    string
	loaded  bool
	view    View

	subsMu sync.Mutex
	subs   map[int]chan View
	nextID int
}

type Option func(*Pipeline)

func WithLogger(l zerolog.Logger) Option { return func(p *Pipeline) { p.log = l } }

func New(store catalog.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		store: store,
		log:   zerolog.Nop(),
		subs:  make(map[int]chan View),
		view:  View{Loading: true},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run consumes the store's observe feed until ctx is cancelled or the feed
// closes (the remote variant completes after one emission). It never fails:
// a broken feed simply leaves the last view in place.
func (p *Pipeline) Run(ctx context.Context) {
	for items := range p.store.Observe(ctx) {
		p.log.Debug().Int("count", len(items)).Msg("catalog snapshot applied")
		p.mu.Lock()
		p.catalog = items
		p.loaded = true
		p.recomputeLocked()
		p.mu.Unlock()
	}
}

// SetTerm replaces the search term and recomputes the view.
func (p *Pipeline) SetTerm(term string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.term == term {
		return
	}
	p.term = term
	p.recomputeLocked()
}

func (p *Pipeline) Term() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.term
}

// Loading is true only while the first catalog snapshot has not arrived.
func (p *Pipeline) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.loaded
}

// View returns the current derived view.
func (p *Pipeline) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

// Subscribe delivers every recomputed view, latest-wins, starting with the
// current one. The channel closes when ctx is cancelled.
func (p *Pipeline) Subscribe(ctx context.Context) <-chan View {
	ch := make(chan View, 1)

	p.subsMu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = ch
	p.subsMu.Unlock()

	sendView(ch, p.View())

	go func() {
		<-ctx.Done()
		p.subsMu.Lock()
		delete(p.subs, id)
		p.subsMu.Unlock()
		close(ch)
	}()
	return ch
}

// recomputeLocked rebuilds the derived view from the combined inputs.
// Callers hold p.mu.
func (p *Pipeline) recomputeLocked() {
	p.view = View{
		Items:   Filter(p.catalog, p.term),
		Term:    p.term,
		Loading: !p.loaded,
	}
	p.fanOut(p.view)
}

func (p *Pipeline) fanOut(v View) {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()
	for _, ch := range p.subs {
		sendView(ch, v)
	}
}

// sendView is latest-wins: an unconsumed older view is dropped for the new
// one so a slow subscriber never blocks recomputation.
func sendView(ch chan View, v View) {
	select {
	case ch <- v:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}

// Filter returns the items matching term, preserving catalog order. An
// empty term passes the whole list through. Matching is a case-insensitive
// substring test against title, author and the decimal rendering of the
// publication year. Pure and total: an unmatched term yields an empty
// list, never an error.
func Filter(items []catalog.Item, term string) []catalog.Item {
	if term == "" {
		out := make([]catalog.Item, len(items))
		copy(out, items)
		return out
	}
	needle := strings.ToLower(term)
	out := make([]catalog.Item, 0, len(items))
	for _, it := range items {
		if Matches(it, needle) {
			out = append(out, it)
		}
	}
	return out
}

// Matches tests one item against an already-lowercased needle.
func Matches(it catalog.Item, needle string) bool {
	if strings.Contains(strings.ToLower(it.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(it.Author), needle) {
		return true
	}
	return it.Year != 0 && strings.Contains(strconv.Itoa(it.Year), needle)
}
