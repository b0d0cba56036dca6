package learner

import (
	"container/heap"

	"github.com/GaryOcean428/qsearch/core"
)

// taskQueue is a max-heap of crawl tasks ordered by priority.
// Not safe for concurrent use; the Learner serializes access.
type taskQueue struct {
	items []*core.CrawlTask
}

var _ heap.Interface = (*taskQueue)(nil)

func (q *taskQueue) Len() int { return len(q.items) }

func (q *taskQueue) Less(i, j int) bool {
	return q.items[i].Priority > q.items[j].Priority
}

func (q *taskQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
}

func (q *taskQueue) Push(x any) {
	q.items = append(q.items, x.(*core.CrawlTask))
}

func (q *taskQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	return item
}

// push adds a task.
func (q *taskQueue) push(task *core.CrawlTask) {
	heap.Push(q, task)
}

// pop removes and returns the highest-priority task, or nil when empty.
func (q *taskQueue) pop() *core.CrawlTask {
	if len(q.items) == 0 {
		return nil
	}
	return heap.Pop(q).(*core.CrawlTask)
}

// evictLowest removes the single lowest-priority task.
func (q *taskQueue) evictLowest() {
	if len(q.items) == 0 {
		return
	}
	lowest := 0
	for i, t := range q.items {
		if t.Priority < q.items[lowest].Priority {
			lowest = i
		}
	}
	heap.Remove(q, lowest)
}
