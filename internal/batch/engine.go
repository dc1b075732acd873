package batch

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dreamware/julea/internal/backend"
	"github.com/dreamware/julea/internal/pool"
	"github.com/dreamware/julea/internal/semantics"
	"github.com/dreamware/julea/internal/taskpool"
	"github.com/dreamware/julea/internal/wire"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

// Dependencies is everything the engine needs to dispatch a run: the
// in-process backends loaded locally (if any) and the pooled connections to
// reach the rest remotely. A server index present in ObjectBackends/
// KVBackends is served in-process; any other index goes over the wire.
type Dependencies struct {
	ObjectBackends map[uint32]backend.Object
	KVBackends     map[uint32]backend.KV
	ObjectPool     *pool.Pool
	KVPool         *pool.Pool
}

// Engine dispatches batches onto local backends or the wire.
type Engine struct {
	deps  Dependencies
	tasks *taskpool.Pool
}

// NewEngine returns an Engine. tasks may be nil if ExecuteAsync is never
// called.
func NewEngine(deps Dependencies, tasks *taskpool.Pool) *Engine {
	return &Engine{deps: deps, tasks: tasks}
}

// runKey is the locality tag adjacent operations are grouped by: same
// operation kind, same server index, same namespace.
type runKey struct {
	op          wire.Opcode
	serverIndex uint32
	namespace   string
}

func keyOf(op *Operation) runKey {
	return runKey{op: op.Op, serverIndex: op.ServerIndex, namespace: op.Namespace}
}

// joinOpErrors folds whatever per-operation errors a local dispatch loop
// left on run into a single error for the run as a whole.
func joinOpErrors(run []*Operation) error {
	var errs []error
	for _, op := range run {
		if op.Err != nil {
			errs = append(errs, op.Err)
		}
	}
	return errors.Join(errs...)
}

// buildRuns groups ops into maximal runs sharing a locality key, honoring
// ordering's reordering allowance.
//
//   - OrderingStrict: only literally-adjacent same-key operations merge.
//   - OrderingSemiRelaxed: operations are stably grouped by key (first
//     appearance order is preserved across groups), so non-adjacent
//     same-key operations merge without otherwise reordering the batch.
//   - OrderingRelaxed: operations are additionally sorted by
//     (namespace, name) before grouping, giving a deterministic
//     backend-visible order; same-key operations whose names sort apart
//     can still land in separate runs.
func buildRuns(ops []*Operation, ordering semantics.Ordering) [][]*Operation {
	switch ordering {
	case semantics.OrderingRelaxed:
		sorted := make([]*Operation, len(ops))
		copy(sorted, ops)
		slices.SortStableFunc(sorted, func(a, b *Operation) int {
			if c := strings.Compare(a.Namespace, b.Namespace); c != 0 {
				return c
			}
			return strings.Compare(a.Name, b.Name)
		})
		return scanAdjacentRuns(sorted)
	case semantics.OrderingSemiRelaxed:
		return groupByFirstAppearance(ops)
	default:
		return scanAdjacentRuns(ops)
	}
}

func scanAdjacentRuns(ops []*Operation) [][]*Operation {
	var runs [][]*Operation
	for i := 0; i < len(ops); {
		j := i + 1
		for j < len(ops) && keyOf(ops[j]) == keyOf(ops[i]) {
			j++
		}
		runs = append(runs, ops[i:j])
		i = j
	}
	return runs
}

func groupByFirstAppearance(ops []*Operation) [][]*Operation {
	order := make([]runKey, 0)
	groups := make(map[runKey][]*Operation)
	for _, op := range ops {
		k := keyOf(op)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], op)
	}
	runs := make([][]*Operation, 0, len(order))
	for _, k := range order {
		runs = append(runs, groups[k])
	}
	return runs
}

// Execute runs batch synchronously, returning a joined error if any run
// failed. Per-operation outcomes are always available on each Operation's
// Err/result-sink fields regardless of the returned error.
func (e *Engine) Execute(b *Batch) error {
	ops, sem, err := b.snapshot()
	if err != nil {
		return err
	}

	runs := buildRuns(ops, sem.Ordering())

	var errs []error
	for _, run := range runs {
		if err := e.executeRun(run, sem); err != nil {
			errs = append(errs, err)
		}
	}

	for _, op := range ops {
		op.releaseHandle()
	}

	return errors.Join(errs...)
}

// ExecuteAsync hands batch to the background task pool and invokes callback
// with the overall success once the sync path completes, mirroring an
// execute_async/wait pair.
func (e *Engine) ExecuteAsync(b *Batch, callback func(success bool)) *taskpool.Future {
	return e.tasks.Submit(func() error {
		err := e.Execute(b)
		if callback != nil {
			callback(err == nil)
		}
		return err
	})
}

func (e *Engine) executeRun(run []*Operation, sem *semantics.Semantics) error {
	k := keyOf(run[0])

	var err error
	var path string
	switch k.op {
	case wire.OpObjectCreate, wire.OpObjectDelete, wire.OpObjectStatus:
		path, err = e.executeObjectSimpleRun(run, k, sem)
	case wire.OpObjectRead, wire.OpObjectWrite:
		path, err = e.executeObjectStreamRun(run, k, sem)
	case wire.OpKVPut, wire.OpKVDelete:
		path, err = e.executeKVWriteRun(run, k, sem)
	case wire.OpKVGet:
		path, err = e.executeKVGetRun(run, k, sem)
	default:
		err = fmt.Errorf("batch: unhandled opcode %v", k.op)
		path = "unknown"
	}

	result := "ok"
	if err != nil {
		result = "error"
	}
	runsTotal.WithLabelValues(path, result).Inc()
	log.Debug().
		Str("op", k.op.String()).
		Uint32("server", k.serverIndex).
		Str("namespace", k.namespace).
		Int("count", len(run)).
		Str("path", path).
		Err(err).
		Msg("batch: run dispatched")

	return err
}

func (e *Engine) localObject(serverIndex uint32) (backend.Object, bool) {
	ob, ok := e.deps.ObjectBackends[serverIndex]
	return ob, ok
}

func (e *Engine) localKV(serverIndex uint32) (backend.KV, bool) {
	kv, ok := e.deps.KVBackends[serverIndex]
	return kv, ok
}

// remoteConn is what a pooled connection must support to carry wire
// frames: pool.Conn only requires Close, so the dispatch path asserts the
// richer interface once per lease.
type remoteConn interface {
	io.Reader
	io.Writer
	io.Closer
}

func (e *Engine) leaseRemote(p *pool.Pool, serverIndex uint32) (pool.Conn, remoteConn, error) {
	if p == nil {
		return nil, nil, fmt.Errorf("batch: no remote pool configured for server %d", serverIndex)
	}
	conn, err := p.Pop(serverIndex)
	if err != nil {
		return nil, nil, err
	}
	rc, ok := conn.(remoteConn)
	if !ok {
		p.Drop(serverIndex, conn)
		return nil, nil, fmt.Errorf("batch: pooled connection does not support read/write")
	}
	return conn, rc, nil
}
