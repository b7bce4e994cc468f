package inet

import (
	"sync"
)

// queueNode is the node structure underneath the Queue type.
type queueNode struct {
	next *queueNode
	line string
}

// Queue implements a singly-linked queue of outbound protocol lines. The
// dispatch goroutine enqueues and a link's writer dequeues so it's
// sync-locked. Ready is signalled whenever lines are added.
type Queue struct {
	front  *queueNode
	back   *queueNode
	length int
	mutex  sync.Mutex

	readyOnce sync.Once
	ready     chan struct{}
}

// Ready returns the channel that receives a value after lines have been
// enqueued. Several enqueues may collapse into one signal.
func (q *Queue) Ready() <-chan struct{} {
	return q.signal()
}

func (q *Queue) signal() chan struct{} {
	q.readyOnce.Do(func() {
		q.ready = make(chan struct{}, 1)
	})
	return q.ready
}

// Enqueue adds lines to the back of the queue under a single lock.
func (q *Queue) Enqueue(lines ...string) {
	if len(lines) == 0 {
		return
	}

	q.mutex.Lock()
	for _, l := range lines {
		q.enqueue(l)
	}
	q.mutex.Unlock()

	select {
	case q.signal() <- struct{}{}:
	default:
	}
}

// enqueue updates the internal structure of the queue to reflect the
// enqueue; adjusts length, front/back ptrs etc.
func (q *Queue) enqueue(line string) {
	node := &queueNode{line: line}

	if q.length == 0 {
		q.front = node
		q.back = q.front
	} else {
		q.back.next = node
		q.back = node
	}

	q.length++
}

// Dequeue takes up to n lines off the front of the queue.
func (q *Queue) Dequeue(n int) []string {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if n > q.length {
		n = q.length
	}
	if n <= 0 {
		return nil
	}

	lines := make([]string, n)
	for i := 0; i < n; i++ {
		lines[i] = q.dequeue()
	}

	return lines
}

// dequeue updates the internal structure of the queue to reflect the
// dequeue; adjusts length, front/back ptrs etc.
func (q *Queue) dequeue() string {
	line := q.front.line
	q.front = q.front.next
	if q.length == 1 {
		q.back = nil
	}
	q.length--

	return line
}

// Len returns the number of queued lines.
func (q *Queue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.length
}
