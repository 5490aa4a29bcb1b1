package recorder

import (
	"sync"

	"github.com/mj1618/uiarec/internal/model"
)

// Queue is a FIFO of recorded actions. Pops never block.
type Queue struct {
	mu    sync.Mutex
	items []model.Action
}

func NewQueue() *Queue {
	return &Queue{}
}

// Push appends a.
func (q *Queue) Push(a model.Action) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, a)
}

// TryPop removes the oldest action. ok is false when the queue is empty.
func (q *Queue) TryPop() (model.Action, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	a := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return a, true
}

// Len returns the number of queued actions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
