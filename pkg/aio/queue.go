//go:build linux

package aio

import (
	"sync"

	"github.com/eapache/queue"
)

// fdQueue
// 单个描述符的挂起操作队列，读写两个方向各一条 FIFO。
// 互斥锁同时保护派发与取消，两者不会对同一操作竞争。
// 被取消的操作惰性出队：状态字已定，弹出时直接丢弃。
type fdQueue struct {
	mu         sync.Mutex
	fd         int
	registered bool
	detached   bool
	read       *queue.Queue
	write      *queue.Queue
}

func newFdQueue(fd int) *fdQueue {
	return &fdQueue{
		fd:    fd,
		read:  queue.New(),
		write: queue.New(),
	}
}

func (q *fdQueue) byDirection(dir Direction) *queue.Queue {
	if dir == ReadDirection {
		return q.read
	}
	return q.write
}

// interest
// 依两个方向上仍然挂起的操作计算关注集。
func (q *fdQueue) interest() (interest Interest) {
	if hasPending(q.read) {
		interest |= ReadInterest
	}
	if hasPending(q.write) {
		interest |= WriteInterest
	}
	return
}

func hasPending(fifo *queue.Queue) bool {
	for i := 0; i < fifo.Length(); i++ {
		op := fifo.Get(i).(*Operation)
		if op.pending() {
			return true
		}
	}
	return false
}

// pop
// 取走一个方向上最早仍挂起的操作，跳过已取消的条目。
func (q *fdQueue) pop(dir Direction) *Operation {
	fifo := q.byDirection(dir)
	for fifo.Length() > 0 {
		op := fifo.Remove().(*Operation)
		if op.pending() {
			return op
		}
	}
	return nil
}

// peek
// 查看一个方向上最早仍挂起的操作但不取走，已取消的条目顺带清理。
func (q *fdQueue) peek(dir Direction) *Operation {
	fifo := q.byDirection(dir)
	for fifo.Length() > 0 {
		op := fifo.Peek().(*Operation)
		if op.pending() {
			return op
		}
		fifo.Remove()
	}
	return nil
}

// drain
// 取走两个方向上的全部操作，提交顺序为读队列先于写队列。
func (q *fdQueue) drain() (ops []*Operation) {
	for q.read.Length() > 0 {
		ops = append(ops, q.read.Remove().(*Operation))
	}
	for q.write.Length() > 0 {
		ops = append(ops, q.write.Remove().(*Operation))
	}
	return
}
