//go:build linux

package aio

import (
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/brickingsoft/errors"
	"github.com/eapache/queue"
)

const defaultWaitBatch = 64

type Options struct {
	// WaitBatch
	// 单次 Wait 的事件批大小。
	WaitBatch int
	// Backend
	// 自定义就绪通知后端，缺省为 epoll。
	Backend Backend
}

type Option func(options *Options) (err error)

func WithWaitBatch(n int) Option {
	return func(options *Options) (err error) {
		if n > 0 {
			options.WaitBatch = n
		}
		return
	}
}

func WithBackend(backend Backend) Option {
	return func(options *Options) (err error) {
		if backend == nil {
			err = errors.New("backend is nil", errors.WithMeta(errMetaPkgKey, errMetaPkgVal))
			return
		}
		options.Backend = backend
		return
	}
}

// NewEngine
// 构建反应器。后端不可用是唯一的致命失败，在此报告；
// 运行期的错误一律走完成回调。
func NewEngine(options ...Option) (engine *Engine, err error) {
	opts := Options{WaitBatch: defaultWaitBatch}
	for _, opt := range options {
		if err = opt(&opts); err != nil {
			return
		}
	}
	backend := opts.Backend
	if backend == nil {
		if backend, err = NewEpollBackend(); err != nil {
			return
		}
	}
	engine = &Engine{
		backend:   backend,
		waitBatch: opts.WaitBatch,
		fds:       make(map[int]*fdQueue),
		posted:    queue.New(),
	}
	return
}

// Engine
// 反应器。任意个工作线程可同时调用 Run，完成回调在其中
// 某个线程上触发，无线程亲和。
type Engine struct {
	backend   Backend
	waitBatch int

	fdsMu sync.Mutex
	fds   map[int]*fdQueue

	postMu sync.Mutex
	posted *queue.Queue

	timersMu sync.Mutex
	timers   timerHeap
	timerSeq uint64

	sourcesMu sync.Mutex
	sources   map[*SignalSource]struct{}

	work    atomic.Int64
	stopped atomic.Bool
	closed  atomic.Bool
}

func (e *Engine) workAdd() {
	e.work.Add(1)
}

func (e *Engine) workDone() {
	if e.work.Add(-1) == 0 {
		_ = e.backend.Wakeup()
	}
}

// RetainWork
// 登记一份引擎之外的未完成工作，阻止 Run 因空闲而返回。
// 与 ReleaseWork 成对使用，典型场景是外部执行器上的异步任务
// 在完成时才把回调投递回引擎。
func (e *Engine) RetainWork() {
	e.workAdd()
}

// ReleaseWork
// 撤销 RetainWork 登记的工作。
func (e *Engine) ReleaseWork() {
	e.workDone()
}

// Run
// 阻塞并循环派发就绪事件、到期定时器与投递的回调，
// 直到 Stop 被调用或再无未完成的工作。
func (e *Engine) Run() (err error) {
	if e.closed.Load() {
		err = newClosedError(errMetaOpWait)
		return
	}
	events := make([]Event, e.waitBatch)
	for {
		if e.stopped.Load() {
			// 级联唤醒其余等待线程。
			_ = e.backend.Wakeup()
			return
		}
		if handler := e.popPosted(); handler != nil {
			handler()
			e.workDone()
			continue
		}
		now := time.Now()
		e.fireTimers(now)
		if e.work.Load() == 0 {
			_ = e.backend.Wakeup()
			return
		}
		timeout := e.nextTimerTimeout(now)
		n, waitErr := e.backend.Wait(events, timeout)
		if waitErr != nil {
			if e.closed.Load() || e.stopped.Load() {
				return
			}
			// 等待失败交付给受影响的操作，不让任何回调悬空。
			err = newBackendError(errMetaOpWait, waitErr)
			if e.stopped.CompareAndSwap(false, true) {
				e.drainOperations(func(op *Operation) error {
					return newBackendError(op.kind.name(), waitErr)
				})
				e.drainTimers(newBackendError(errMetaOpWait, waitErr))
				e.drainSources()
			}
			_ = e.backend.Wakeup()
			return
		}
		for i := 0; i < n; i++ {
			if events[i].Wakeup {
				continue
			}
			e.handleReady(events[i])
		}
	}
}

// Post
// 投递一个回调，互相保持 FIFO，由某个 Run 线程执行。
func (e *Engine) Post(handler func()) {
	e.post(handler)
}

func (e *Engine) post(handler func()) {
	e.workAdd()
	e.postMu.Lock()
	e.posted.Add(handler)
	e.postMu.Unlock()
	_ = e.backend.Wakeup()
}

func (e *Engine) popPosted() (handler func()) {
	e.postMu.Lock()
	if e.posted.Length() > 0 {
		handler = e.posted.Remove().(func())
	}
	e.postMu.Unlock()
	return
}

// Stop
// 停止派发并以取消类错误排干所有仍挂起的操作、定时器与信号等待。
// 幂等。
func (e *Engine) Stop() {
	if !e.stopped.CompareAndSwap(false, true) {
		return
	}
	e.drainOperations(func(op *Operation) error {
		return newCancelledError(op.kind.name())
	})
	e.drainTimers(newCancelledError(errMetaOpWait))
	e.drainSources()
	_ = e.backend.Wakeup()
}

// Reset
// 允许再次 Run。幂等。
func (e *Engine) Reset() {
	e.stopped.Store(false)
}

func (e *Engine) Stopped() bool {
	return e.stopped.Load()
}

// Close
// 关闭引擎与后端。挂起工作先按 Stop 语义排干，
// 仍在投递队列里的回调在返回前执行，不静默丢弃。
func (e *Engine) Close() (err error) {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	e.Stop()
	e.sourcesMu.Lock()
	for source := range e.sources {
		source.shutdown()
	}
	e.sources = nil
	e.sourcesMu.Unlock()
	// 回调可能再投递，不能持锁执行。
	for {
		handler := e.popPosted()
		if handler == nil {
			break
		}
		handler()
		e.workDone()
	}
	err = e.backend.Close()
	return
}

// 提交：操作入队到 (描述符, 方向)，同方向严格 FIFO。
// 提交从不同步触发回调，完成总是经由之后的派发交付。

func (e *Engine) SubmitConnect(fd int, handler Handler) *Operation {
	return e.submit(&Operation{kind: connectOp, fd: fd, handler: handler, engine: e})
}

func (e *Engine) SubmitAccept(fd int, handler Handler) *Operation {
	return e.submit(&Operation{kind: acceptOp, fd: fd, handler: handler, engine: e})
}

func (e *Engine) SubmitReceive(fd int, b []byte, stream bool, handler Handler) *Operation {
	return e.submit(&Operation{kind: receiveOp, fd: fd, b: b, stream: stream, handler: handler, engine: e})
}

func (e *Engine) SubmitReceiveFrom(fd int, b []byte, handler Handler) *Operation {
	return e.submit(&Operation{kind: receiveFromOp, fd: fd, b: b, handler: handler, engine: e})
}

func (e *Engine) SubmitSend(fd int, b []byte, handler Handler) *Operation {
	return e.submit(&Operation{kind: sendOp, fd: fd, b: b, handler: handler, engine: e})
}

func (e *Engine) SubmitSendTo(fd int, b []byte, sa syscall.Sockaddr, handler Handler) *Operation {
	return e.submit(&Operation{kind: sendToOp, fd: fd, b: b, sa: sa, handler: handler, engine: e})
}

func (e *Engine) submit(op *Operation) *Operation {
	e.workAdd()
	if e.closed.Load() || e.stopped.Load() {
		cause := newClosedError(op.kind.name())
		e.post(func() {
			op.cancel(cause)
		})
		return op
	}
	q := e.queueFor(op.fd)
	q.mu.Lock()
	if q.detached {
		q.mu.Unlock()
		cause := newClosedError(op.kind.name())
		e.post(func() {
			op.cancel(cause)
		})
		return op
	}
	q.byDirection(op.kind.direction()).Add(op)
	interest := q.interest()
	var regErr error
	if !q.registered {
		regErr = e.backend.Register(op.fd, interest)
		q.registered = regErr == nil
	} else {
		regErr = e.backend.Modify(op.fd, interest)
	}
	q.mu.Unlock()
	if regErr != nil {
		e.post(func() {
			op.cancel(regErr)
		})
	}
	return op
}

func (e *Engine) queueFor(fd int) *fdQueue {
	e.fdsMu.Lock()
	q := e.fds[fd]
	if q == nil {
		q = newFdQueue(fd)
		e.fds[fd] = q
	}
	e.fdsMu.Unlock()
	return q
}

func (e *Engine) lookup(fd int) *fdQueue {
	e.fdsMu.Lock()
	q := e.fds[fd]
	e.fdsMu.Unlock()
	return q
}

// handleReady
// 每个就绪方向至多派发一个操作，避免繁忙描述符饿死其它描述符；
// 还有操作在等时重新装上兴趣。
func (e *Engine) handleReady(ev Event) {
	q := e.lookup(ev.Fd)
	if q == nil {
		return
	}
	if ev.Interest.Readable() {
		e.serve(q, ReadDirection)
	}
	if ev.Interest.Writable() {
		e.serve(q, WriteDirection)
	}
	e.rearm(q)
}

func (e *Engine) serve(q *fdQueue, dir Direction) {
	q.mu.Lock()
	op := q.peek(dir)
	if op == nil {
		q.mu.Unlock()
		return
	}
	res, wouldblock := op.perform()
	if wouldblock {
		// EAGAIN 不出队也不上报，等下一次就绪。
		q.mu.Unlock()
		return
	}
	q.pop(dir)
	q.mu.Unlock()
	op.complete(res)
}

func (e *Engine) rearm(q *fdQueue) {
	q.mu.Lock()
	if q.detached {
		q.mu.Unlock()
		return
	}
	interest := q.interest()
	if interest == 0 {
		q.mu.Unlock()
		return
	}
	modErr := e.backend.Modify(q.fd, interest)
	if modErr == nil {
		q.mu.Unlock()
		return
	}
	ops := q.drain()
	q.mu.Unlock()
	for _, op := range ops {
		op.cancel(modErr)
	}
}

// CloseFd
// 同步排干该描述符的操作队列，每个挂起操作都以
// 描述符已关闭的错误得到完成回调，返回前交付完毕。
func (e *Engine) CloseFd(fd int) {
	e.fdsMu.Lock()
	q := e.fds[fd]
	delete(e.fds, fd)
	e.fdsMu.Unlock()
	if q == nil {
		return
	}
	q.mu.Lock()
	q.detached = true
	registered := q.registered
	ops := q.drain()
	q.mu.Unlock()
	if registered {
		_ = e.backend.Deregister(fd)
	}
	for _, op := range ops {
		op.cancel(newClosedError(op.kind.name()))
	}
}

// CancelFd
// 取消该描述符上全部挂起操作，队列与注册保留。
func (e *Engine) CancelFd(fd int) {
	q := e.lookup(fd)
	if q == nil {
		return
	}
	q.mu.Lock()
	var ops []*Operation
	for _, fifo := range []Direction{ReadDirection, WriteDirection} {
		dirQ := q.byDirection(fifo)
		for i := 0; i < dirQ.Length(); i++ {
			ops = append(ops, dirQ.Get(i).(*Operation))
		}
	}
	q.mu.Unlock()
	for _, op := range ops {
		op.Cancel()
	}
}

func (e *Engine) drainOperations(cause func(op *Operation) error) {
	e.fdsMu.Lock()
	queues := make([]*fdQueue, 0, len(e.fds))
	for _, q := range e.fds {
		queues = append(queues, q)
	}
	e.fdsMu.Unlock()
	for _, q := range queues {
		q.mu.Lock()
		ops := q.drain()
		q.mu.Unlock()
		for _, op := range ops {
			op.cancel(cause(op))
		}
	}
}

func (e *Engine) drainSources() {
	e.sourcesMu.Lock()
	sources := make([]*SignalSource, 0, len(e.sources))
	for source := range e.sources {
		sources = append(sources, source)
	}
	e.sourcesMu.Unlock()
	for _, source := range sources {
		source.drainWaiters(newCancelledError(errMetaOpSignal))
	}
}

func (e *Engine) attachSource(source *SignalSource) {
	e.sourcesMu.Lock()
	if e.sources == nil {
		e.sources = make(map[*SignalSource]struct{})
	}
	e.sources[source] = struct{}{}
	e.sourcesMu.Unlock()
}

func (e *Engine) detachSource(source *SignalSource) {
	e.sourcesMu.Lock()
	delete(e.sources, source)
	e.sourcesMu.Unlock()
}
