package threadpool

import "container/list"

// instructionQueue is an unbounded FIFO of pending instructions.
// It is not safe for concurrent use; the owning pool guards it with its mutex.
type instructionQueue struct {
	items *list.List
}

func newInstructionQueue() *instructionQueue {
	return &instructionQueue{items: list.New()}
}

func (q *instructionQueue) pushBack(ins Instruction) {
	q.items.PushBack(ins)
}

// popFront removes and returns the head. Callers must check len first.
func (q *instructionQueue) popFront() Instruction {
	front := q.items.Front()
	if front == nil {
		panic("threadpool: popFront on empty instruction queue")
	}
	return q.items.Remove(front).(Instruction)
}

func (q *instructionQueue) len() int {
	return q.items.Len()
}

// clear discards every pending instruction and returns how many were dropped.
func (q *instructionQueue) clear() int {
	n := q.items.Len()
	q.items.Init()
	return n
}
