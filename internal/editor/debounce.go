package editor

import (
	"sync"
	"time"
)

// Stopper 是已调度回调的句柄。
type Stopper interface {
	Stop() bool
}

// AfterFunc 在 d 之后执行 f，测试中可替换为假时钟。
type AfterFunc func(d time.Duration, f func()) Stopper

// RealAfterFunc 使用真实时钟。
func RealAfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// Debouncer 最多保留一个待执行回调，再次 Schedule 会替换它并重新计时。
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	after   AfterFunc
	timer   Stopper
	pending func()
	gen     uint64
}

// NewDebouncer 创建防抖器，after 为 nil 时使用 RealAfterFunc。
func NewDebouncer(delay time.Duration, after AfterFunc) *Debouncer {
	if after == nil {
		after = RealAfterFunc
	}
	return &Debouncer{delay: delay, after: after}
}

// Schedule 用 fn 替换待执行的回调。
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.pending = fn
	gen := d.gen
	d.timer = d.after(d.delay, func() { d.fire(gen) })
}

// Cancel 丢弃待执行的回调。
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.pending = nil
}

// Flush 在调用方 goroutine 上立即执行待执行回调，返回是否存在回调。
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	d.stopLocked()
	d.pending = nil
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Pending 报告是否有回调在等待。
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// 已触发的旧定时器看到过期的 generation 后直接返回。
func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()
	fn()
}
