package hover

import "sync"

// Channel fans hover messages out to every participant except the sender
type Channel struct {
	mu    sync.Mutex
	parts map[string]*Participant
}

// NewChannel returns an empty channel
func NewChannel() *Channel { return &Channel{parts: make(map[string]*Participant)} }

// Participant is one visualization on a Channel
type Participant struct {
	name   string
	ch     *Channel
	onRecv func(Message)

	mu        sync.Mutex
	highlight Message
}

// Join registers name; onRecv may be nil. Joining twice replaces the previous participant
func (c *Channel) Join(name string, onRecv func(Message)) *Participant {
	p := &Participant{name: name, ch: c, onRecv: onRecv}
	c.mu.Lock()
	c.parts[name] = p
	c.mu.Unlock()
	return p
}

// Leave removes p from its channel
func (p *Participant) Leave() {
	p.ch.mu.Lock()
	if p.ch.parts[p.name] == p {
		delete(p.ch.parts, p.name)
	}
	p.ch.mu.Unlock()
}

// Publish sends m to every other participant
func (p *Participant) Publish(m Message) {
	p.ch.mu.Lock()
	targets := make([]*Participant, 0, len(p.ch.parts))
	for name, o := range p.ch.parts {
		if name != p.name {
			targets = append(targets, o)
		}
	}
	p.ch.mu.Unlock()

	for _, o := range targets {
		o.receive(m)
	}
}

// Highlight is the last message received from another participant
func (p *Participant) Highlight() Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.highlight
}

// receive stores m for drawing and never re-publishes it
func (p *Participant) receive(m Message) {
	p.mu.Lock()
	p.highlight = m
	p.mu.Unlock()
	if p.onRecv != nil {
		p.onRecv(m)
	}
}
