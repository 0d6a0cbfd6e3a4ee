package dispatch

import (
	"errors"
	"sync"
)

// ErrDeferred is the sentinel a Handler returns to signal that its result
// will arrive later through Dispatcher.Resolve rather than the normal
// return path (spec.md §5/§7's asynchronous method replies). Returning it
// is the only contract: the handler is responsible for stashing whatever
// it needs from Dispatcher.CurrentInvocation to call Resolve once the
// real answer is ready.
var ErrDeferred = errors.New("dispatch: reply deferred")

type pendingKey struct {
	client   string
	invokeID string
}

// pendingInvokes is the store backing deferred replies: a primary map
// plus a per-client secondary index so a disconnect can drop every
// invocation a client left outstanding without a full-table scan, the
// same store/byRequest/bySession shape as coreengine/kernel/interrupts.go's
// InterruptService.
type pendingInvokes struct {
	mu       sync.Mutex
	byKey    map[pendingKey]Invocation
	byClient map[string][]pendingKey
}

func newPendingInvokes() *pendingInvokes {
	return &pendingInvokes{
		byKey:    map[pendingKey]Invocation{},
		byClient: map[string][]pendingKey{},
	}
}

func (p *pendingInvokes) add(inv Invocation) {
	key := pendingKey{client: inv.Client, invokeID: inv.InvokeID}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byKey[key] = inv
	p.byClient[inv.Client] = append(p.byClient[inv.Client], key)
}

func (p *pendingInvokes) take(client, invokeID string) (Invocation, bool) {
	key := pendingKey{client: client, invokeID: invokeID}
	p.mu.Lock()
	defer p.mu.Unlock()
	inv, ok := p.byKey[key]
	if !ok {
		return Invocation{}, false
	}
	delete(p.byKey, key)
	p.removeFromIndexLocked(inv.Client, key)
	return inv, true
}

// dropClient discards every invocation pending for client, returning how
// many were dropped, used when a connection ends mid-invoke.
func (p *pendingInvokes) dropClient(client string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := p.byClient[client]
	for _, k := range keys {
		delete(p.byKey, k)
	}
	delete(p.byClient, client)
	return len(keys)
}

func (p *pendingInvokes) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.byKey)
}

// removeFromIndexLocked drops key from client's index slice; caller holds mu.
func (p *pendingInvokes) removeFromIndexLocked(client string, key pendingKey) {
	keys := p.byClient[client]
	for i, k := range keys {
		if k == key {
			p.byClient[client] = append(keys[:i], keys[i+1:]...)
			break
		}
	}
}
