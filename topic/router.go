// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package topic

import (
	"sync"

	"github.com/luxfi/log"
)

// Envelope is what the Router hands a Handler: Raw is the inbound payload
// as received. The Router does not decode it, so Method is left empty.
type Envelope struct {
	Method string
	Raw    []byte
}

// Handler processes an inbound Envelope delivered on a topic.
type Handler func(swarmID string, ch Channel, env Envelope)

// subscription reference-counts a (swarmID, channel) pair so it is only
// torn down on the underlying pub/sub layer once no subsystem holds a
// handle.
type subscription struct {
	refs     int
	handlers map[string]Handler // handler id -> handler
	cancel   func()
}

// PubSub is the out-of-scope gossip pub/sub substrate, referenced only by
// interface. Production implementations are provided externally.
type PubSub interface {
	Subscribe(topic string, deliver func(payload []byte)) (cancel func(), err error)
	Publish(topic string, payload []byte) error
}

// Router maintains per-swarm channel subscriptions and delivers each
// inbound payload, undecoded, to every handler registered on its topic;
// it does not select handlers by method name.
type Router struct {
	log   log.Logger
	ps    PubSub
	mu    sync.Mutex
	subs  map[string]*subscription // topic string -> subscription
	seqID int
}

// New constructs a Router over a concrete PubSub implementation.
func New(ps PubSub, logger log.Logger) *Router {
	return &Router{ps: ps, log: logger, subs: make(map[string]*subscription)}
}

// Subscribe registers handler for (swarmID, ch), subscribing to the
// underlying pub/sub layer on first reference. It returns an Unsubscribe
// func the caller must invoke when done.
func (r *Router) Subscribe(swarmID string, ch Channel, handler Handler) (unsubscribe func(), err error) {
	full := String(swarmID, ch)

	r.mu.Lock()
	sub, exists := r.subs[full]
	if !exists {
		sub = &subscription{handlers: make(map[string]Handler)}
		r.subs[full] = sub
	}
	r.seqID++
	handlerID := sequenceID(r.seqID)
	sub.handlers[handlerID] = handler
	sub.refs++
	needsSubscribe := !exists
	r.mu.Unlock()

	if needsSubscribe {
		cancel, err := r.ps.Subscribe(full, func(payload []byte) {
			r.dispatch(swarmID, ch, payload)
		})
		if err != nil {
			r.mu.Lock()
			delete(sub.handlers, handlerID)
			sub.refs--
			if sub.refs == 0 {
				delete(r.subs, full)
			}
			r.mu.Unlock()
			return nil, err
		}
		r.mu.Lock()
		sub.cancel = cancel
		r.mu.Unlock()
	}

	return func() { r.unsubscribe(full, handlerID) }, nil
}

func (r *Router) unsubscribe(full, handlerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[full]
	if !ok {
		return
	}
	delete(sub.handlers, handlerID)
	sub.refs--
	if sub.refs <= 0 {
		if sub.cancel != nil {
			sub.cancel()
		}
		delete(r.subs, full)
	}
}

// Publish sends payload on (swarmID, ch).
func (r *Router) Publish(swarmID string, ch Channel, payload []byte) error {
	return r.ps.Publish(String(swarmID, ch), payload)
}

func (r *Router) dispatch(swarmID string, ch Channel, payload []byte) {
	r.mu.Lock()
	sub, ok := r.subs[String(swarmID, ch)]
	var handlers []Handler
	if ok {
		handlers = make([]Handler, 0, len(sub.handlers))
		for _, h := range sub.handlers {
			handlers = append(handlers, h)
		}
	}
	r.mu.Unlock()

	for _, h := range handlers {
		h(swarmID, ch, Envelope{Raw: payload})
	}
}

func sequenceID(n int) string {
	const hex = "0123456789abcdef"
	if n == 0 {
		return "0"
	}
	buf := make([]byte, 0, 16)
	for n > 0 {
		buf = append([]byte{hex[n%16]}, buf...)
		n /= 16
	}
	return string(buf)
}
