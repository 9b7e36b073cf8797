package review

import "sync"

// viewPublisher fans snapshots out to subscribers. Each subscriber channel
// holds one view; a newer view replaces an unread one so slow readers always
// see the latest state rather than a backlog.
type viewPublisher struct {
	mu   sync.Mutex
	subs []chan View
}

func (p *viewPublisher) subscribe() <-chan View {
	ch := make(chan View, 1)
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()
	return ch
}

func (p *viewPublisher) publish(v View) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, ch := range p.subs {
		select {
		case ch <- v:
			continue
		default:
		}
		// Full: drop the stale view, then retry once
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
