package redisstore

import (
	"context"

	"github.com/nodenorm/node-normalizer/internal/infrastructure/store"
	"github.com/nodenorm/node-normalizer/pkg/errors"
)

type opKind int

const (
	opSet opKind = iota
	opRPush
)

type bufferedOp struct {
	kind   opKind
	key    string
	values []string
}

// writePipeline buffers Set/RPush calls grouped by store, auto-flushing
// every pipelineBlockSize ops via a real Redis pipeline (spec.md §4.A
// ingestion contract).
type writePipeline struct {
	store   *Store
	buffers map[store.StoreName][]bufferedOp
	pending int
}

func (p *writePipeline) Set(name store.StoreName, key, value string) {
	p.append(name, bufferedOp{kind: opSet, key: key, values: []string{value}})
}

func (p *writePipeline) RPush(name store.StoreName, key string, values ...string) {
	p.append(name, bufferedOp{kind: opRPush, key: key, values: values})
}

func (p *writePipeline) append(name store.StoreName, op bufferedOp) {
	if p.buffers == nil {
		p.buffers = make(map[store.StoreName][]bufferedOp)
	}
	p.buffers[name] = append(p.buffers[name], op)
	p.pending++
	if p.pending >= p.store.pipelineBlockSize {
		// Best-effort eager flush; a failure surfaces on the caller's next
		// explicit Flush, since buffers for failed stores are left intact.
		_ = p.flushLocked(context.Background())
	}
}

// Flush sends all buffered ops through a single Redis pipeline per store and
// clears the buffer. Any transport error aborts the remaining stores' writes
// for this call and returns StoreUnavailable.
func (p *writePipeline) Flush(ctx context.Context) error {
	return p.flushLocked(ctx)
}

func (p *writePipeline) flushLocked(ctx context.Context) error {
	rdb := p.store.client.Underlying()
	for name, ops := range p.buffers {
		if len(ops) == 0 {
			continue
		}
		pipe := rdb.Pipeline()
		for _, o := range ops {
			key := p.store.prefixed(name, o.key)
			switch o.kind {
			case opSet:
				pipe.Set(ctx, key, o.values[0], 0)
			case opRPush:
				args := make([]interface{}, len(o.values))
				for i, v := range o.values {
					args[i] = v
				}
				pipe.RPush(ctx, key, args...)
			}
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CodeStoreUnavailable, "redis pipeline flush failed").
				WithDetail("store=" + string(name))
		}
		delete(p.buffers, name)
	}
	p.pending = 0
	return nil
}
