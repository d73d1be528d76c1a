package lr

import (
	"sync"

	"github.com/emirpasic/gods/stacks/linkedliststack"
)

// workQueue is the stack of states waiting to be expanded. take blocks until a state is
// available; when every worker is waiting on an empty stack, the queue terminates and
// wakes all workers.
type workQueue struct {
	mu         sync.Mutex
	cond       *sync.Cond
	stack      *linkedliststack.Stack
	workers    int
	idle       int
	terminated bool
}

func newWorkQueue(workers int) *workQueue {
	q := &workQueue{
		stack:   linkedliststack.New(),
		workers: workers,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *workQueue) put(s *State) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stack.Push(s)
	q.cond.Signal()
}

func (q *workQueue) take() (*State, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if q.terminated {
			return nil, false
		}
		if v, ok := q.stack.Pop(); ok {
			return v.(*State), true
		}
		q.idle++
		if q.idle == q.workers {
			q.terminated = true
			q.cond.Broadcast()
			return nil, false
		}
		q.cond.Wait()
		q.idle--
	}
}

// abort terminates the queue regardless of pending work.
func (q *workQueue) abort() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.terminated = true
	q.cond.Broadcast()
}
