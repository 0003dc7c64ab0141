package systems

import (
	"container/heap"

	"github.com/mlange-42/ark/ecs"
)

// Region identifies a timer-driven state region of a segment.
type Region uint8

const (
	RegionCondition Region = iota
	RegionFlowering
)

// timer is one pending region deadline.
type timer struct {
	at     int64
	seq    uint64
	entity ecs.Entity
	region Region
}

// timerQueue orders timers by deadline, then by arming order.
type timerQueue []timer

func (q timerQueue) Len() int { return len(q) }
func (q timerQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}
func (q timerQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *timerQueue) Push(x any)   { *q = append(*q, x.(timer)) }
func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	*q = old[:n-1]
	return t
}

// Scheduler is the logical clock shared by every segment. Time is in
// milliseconds and only moves forward.
type Scheduler struct {
	now   int64
	seq   uint64
	queue timerQueue
}

// Now returns the current logical time.
func (s *Scheduler) Now() int64 {
	return s.now
}

// Pending returns the number of armed timers.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// After arms a timer for region of entity, delay milliseconds from now.
func (s *Scheduler) After(delay int64, entity ecs.Entity, region Region) {
	s.seq++
	heap.Push(&s.queue, timer{at: s.now + delay, seq: s.seq, entity: entity, region: region})
}

// next pops the earliest timer due at or before until and moves the clock
// to its deadline.
func (s *Scheduler) next(until int64) (timer, bool) {
	if len(s.queue) == 0 || s.queue[0].at > until {
		return timer{}, false
	}
	t := heap.Pop(&s.queue).(timer)
	if t.at > s.now {
		s.now = t.at
	}
	return t, true
}

// settle moves the clock to until once every due timer has fired.
func (s *Scheduler) settle(until int64) {
	if until > s.now {
		s.now = until
	}
}

// nextDeadline returns the earliest armed deadline.
func (s *Scheduler) nextDeadline() (int64, bool) {
	if len(s.queue) == 0 {
		return 0, false
	}
	return s.queue[0].at, true
}
