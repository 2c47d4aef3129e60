package threadpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructionQueue_FIFO(t *testing.T) {
	q := newInstructionQueue()
	for i := 0; i < 5; i++ {
		q.pushBack(Instruction{Arg: i})
	}
	require.Equal(t, 5, q.len())

	for i := 0; i < 5; i++ {
		assert.Equal(t, i, q.popFront().Arg)
	}
	assert.Equal(t, 0, q.len())
}

func TestInstructionQueue_PopEmptyPanics(t *testing.T) {
	q := newInstructionQueue()
	assert.Panics(t, func() { q.popFront() })
}

func TestInstructionQueue_Clear(t *testing.T) {
	q := newInstructionQueue()
	q.pushBack(Instruction{Arg: "a"})
	q.pushBack(Instruction{Arg: "b"})

	assert.Equal(t, 2, q.clear())
	assert.Equal(t, 0, q.len())

	q.pushBack(Instruction{Arg: "c"})
	assert.Equal(t, "c", q.popFront().Arg)
}
