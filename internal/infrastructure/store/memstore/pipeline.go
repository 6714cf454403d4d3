package memstore

import (
	"context"

	"github.com/nodenorm/node-normalizer/internal/infrastructure/store"
)

type opKind int

const (
	opSet opKind = iota
	opRPush
)

type op struct {
	kind   opKind
	store  store.StoreName
	key    string
	values []string
}

// pipeline buffers writes and applies them atomically under a single lock
// on Flush, mirroring the batching contract of a real Redis pipeline
// without the network round-trip.
type pipeline struct {
	store *Store
	ops   []op
}

func (p *pipeline) Set(name store.StoreName, key, value string) {
	p.ops = append(p.ops, op{kind: opSet, store: name, key: key, values: []string{value}})
}

func (p *pipeline) RPush(name store.StoreName, key string, values ...string) {
	p.ops = append(p.ops, op{kind: opRPush, store: name, key: key, values: values})
}

func (p *pipeline) Flush(_ context.Context) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	for _, o := range p.ops {
		switch o.kind {
		case opSet:
			p.store.ensureScalar(o.store)[o.key] = o.values[0]
		case opRPush:
			m := p.store.ensureList(o.store)
			m[o.key] = append(m[o.key], o.values...)
		}
	}
	p.ops = nil
	return nil
}
