package reg

import "sync/atomic"

// Register is a 32-bit peripheral register.
type Register interface {
	Get() uint32
	Set(uint32)
}

// Word is an in-memory Register.
type Word struct {
	v uint32
}

// NewWord creates a Word with an initial (reset) value.
func NewWord(reset uint32) *Word {
	return &Word{v: reset}
}

// Get implements Register.
func (w *Word) Get() uint32 {
	return atomic.LoadUint32(&w.v)
}

// Set implements Register.
func (w *Word) Set(v uint32) {
	atomic.StoreUint32(&w.v, v)
}

// Hooked is a Register with side effects on access.
// OnRead may rewrite the stored value after the read (e.g. read-to-clear
// flags), OnWrite receives the written value and decides what is stored.
type Hooked struct {
	Word
	OnRead  func(stored uint32) (value, next uint32)
	OnWrite func(prev, written uint32) uint32
}

// Get implements Register.
func (h *Hooked) Get() uint32 {
	v := h.Word.Get()
	if h.OnRead == nil {
		return v
	}
	value, next := h.OnRead(v)
	if next != v {
		h.Word.Set(next)
	}
	return value
}

// Set implements Register.
func (h *Hooked) Set(v uint32) {
	if h.OnWrite != nil {
		v = h.OnWrite(h.Word.Get(), v)
	}
	h.Word.Set(v)
}

// Peek reads the stored value without triggering OnRead.
func (h *Hooked) Peek() uint32 {
	return h.Word.Get()
}

// Poke stores a value without triggering OnWrite.
func (h *Hooked) Poke(v uint32) {
	h.Word.Set(v)
}
