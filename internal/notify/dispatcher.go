package notify

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eventloom/eventloom/internal/model"
	"github.com/eventloom/eventloom/internal/plan"
)

var (
	ErrInvalidFireTime = errors.New("notify: invalid fire time")
	ErrStopped         = errors.New("notify: dispatcher stopped")
)

type queueItem struct {
	req plan.Request
	gen uint64
}

type requestQueue []queueItem

func (q requestQueue) Len() int { return len(q) }

func (q requestQueue) Less(i, j int) bool {
	return q[i].req.FireAt.Before(q[j].req.FireAt)
}

func (q requestQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *requestQueue) Push(x any) {
	*q = append(*q, x.(queueItem))
}

func (q *requestQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[0 : n-1]
	return item
}

// Dispatcher is an in-process Scheduler: a timer-heap loop that delivers
// Events on a buffered channel. Superseded and cancelled requests stay in
// the heap and are discarded lazily when they surface, by comparing their
// generation against the live generation for their key. Requests with a
// non-none Repeat re-arm themselves one interval after each firing.
type Dispatcher struct {
	mu      sync.Mutex
	queue   requestQueue
	live    map[plan.Key]uint64
	gen     uint64
	out     chan Event
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewDispatcher(bufferSize int) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Dispatcher{
		queue:  make(requestQueue, 0),
		live:   make(map[plan.Key]uint64),
		out:    make(chan Event, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (d *Dispatcher) C() <-chan Event {
	return d.out
}

func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true
	heap.Init(&d.queue)
	go d.loop()
}

func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.started || d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.stopCh)
	d.mu.Unlock()
	<-d.doneCh
}

// Apply registers every request in the plan, superseding whatever was
// previously live under the same key.
func (d *Dispatcher) Apply(reqs []plan.Request) error {
	for _, req := range reqs {
		if req.FireAt.IsZero() {
			return ErrInvalidFireTime
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return ErrStopped
	}
	for _, req := range reqs {
		d.gen++
		d.live[req.Key()] = d.gen
		heap.Push(&d.queue, queueItem{req: req, gen: d.gen})
	}
	d.signalWakeup()
	return nil
}

// CancelAll invalidates every live request for the task. Queued items are
// dropped when they reach the top of the heap.
func (d *Dispatcher) CancelAll(taskID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key := range d.live {
		if key.TaskID == taskID {
			delete(d.live, key)
		}
	}
}

// Dropped reports how many events were discarded because the consumer
// fell behind the output buffer.
func (d *Dispatcher) Dropped() uint64 {
	return atomic.LoadUint64(&d.dropped)
}

func (d *Dispatcher) loop() {
	defer close(d.doneCh)
	defer close(d.out)

	var timer *time.Timer
	for {
		next, hasNext := d.peek()
		if !hasNext {
			select {
			case <-d.wakeup:
				continue
			case <-d.stopCh:
				return
			}
		}

		wait := time.Until(next.FireAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			for _, ev := range d.popDue(time.Now()) {
				select {
				case d.out <- ev:
				default:
					atomic.AddUint64(&d.dropped, 1)
				}
			}
		case <-d.wakeup:
			continue
		case <-d.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (d *Dispatcher) signalWakeup() {
	select {
	case d.wakeup <- struct{}{}:
	default:
	}
}

// peek returns the next live request, discarding stale heap entries.
func (d *Dispatcher) peek() (plan.Request, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for len(d.queue) > 0 {
		top := d.queue[0]
		if d.live[top.req.Key()] == top.gen {
			return top.req, true
		}
		heap.Pop(&d.queue)
	}
	return plan.Request{}, false
}

func (d *Dispatcher) popDue(now time.Time) []Event {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Event, 0)
	for len(d.queue) > 0 {
		top := d.queue[0]
		if top.req.FireAt.After(now) {
			break
		}
		heap.Pop(&d.queue)
		if d.live[top.req.Key()] != top.gen {
			continue
		}
		out = append(out, Event{
			TaskID:  top.req.TaskID,
			Kind:    top.req.Kind,
			Content: top.req.Content,
			FiredAt: now,
		})
		d.rearm(top)
	}
	return out
}

// rearm pushes the next firing of a standing (repeating) request, keeping
// its generation so a later Apply or CancelAll still supersedes it.
func (d *Dispatcher) rearm(item queueItem) {
	if item.req.Repeat == "" || item.req.Repeat == model.IntervalNone {
		delete(d.live, item.req.Key())
		return
	}
	next, err := model.NextOccurrence(item.req.FireAt, item.req.Repeat)
	if err != nil {
		delete(d.live, item.req.Key())
		return
	}
	item.req.FireAt = next
	heap.Push(&d.queue, item)
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
