package alloc

import (
	"fmt"
	"io"
	"log"
	"math/bits"
	"sort"
	"sync"
)

const (
	// wordSize is the size of one bookkeeping record.
	wordSize = bits.UintSize / 8

	// minChunk is the smallest unit the heap hands out.
	minChunk = wordSize

	// DefaultGrowthPages is the number of pages the heap grows by when it
	// runs out: one page record per bit of a machine word.
	DefaultGrowthPages = bits.UintSize
)

// Allocator supplies zeroed dynamic memory.
type Allocator interface {
	// Alloc returns size zeroed bytes aligned to align.
	Alloc(size, align int) (Block, error)
	// Free returns a block obtained from Alloc.
	Free(b Block) error
}

// Stats is a snapshot of heap usage.
type Stats struct {
	// Spans is the number of mappings claimed from the kernel.
	Spans int
	// Mapped is the total size of all claimed spans in bytes.
	Mapped int
	// InUse is the number of bytes currently handed out.
	InUse int
	// Allocations is the number of live allocations.
	Allocations int
	// Growths counts how many times the heap had to map more memory.
	Growths int
}

// Free returns the number of mapped bytes not handed out.
func (s Stats) Free() int {
	return s.Mapped - s.InUse
}

type extent struct {
	off  int
	size int
}

func (e extent) end() int {
	return e.off + e.size
}

// span is a claimed mapping and the free extents within it, sorted by offset.
// Adjacent free extents are always merged.
type span struct {
	base uintptr
	mem  []byte
	free []extent
}

func (s *span) contains(addr uintptr) bool {
	return addr >= s.base && addr < s.base+uintptr(len(s.mem))
}

// take carves size bytes aligned to align out of the first free extent that
// fits.
func (s *span) take(size, align int) (int, bool) {
	for i, e := range s.free {
		addr := s.base + uintptr(e.off)
		aligned := (addr + uintptr(align) - 1) &^ (uintptr(align) - 1)
		off := e.off + int(aligned-addr)
		if off+size > e.end() {
			continue
		}

		var rest []extent
		if off > e.off {
			rest = append(rest, extent{e.off, off - e.off})
		}
		if off+size < e.end() {
			rest = append(rest, extent{off + size, e.end() - off - size})
		}

		s.free = append(s.free[:i], append(rest, s.free[i+1:]...)...)
		return off, true
	}
	return 0, false
}

// give returns an extent to the free list, merging it with its neighbors.
func (s *span) give(e extent) {
	i := sort.Search(len(s.free), func(i int) bool { return s.free[i].off > e.off })

	if i > 0 && s.free[i-1].end() == e.off {
		i--
		e = extent{s.free[i].off, s.free[i].size + e.size}
		s.free = append(s.free[:i], s.free[i+1:]...)
	}
	if i < len(s.free) && e.end() == s.free[i].off {
		e.size += s.free[i].size
		s.free = append(s.free[:i], s.free[i+1:]...)
	}

	s.free = append(s.free, extent{})
	copy(s.free[i+1:], s.free[i:])
	s.free[i] = e
}

// Heap is a general purpose allocator over spans mapped from the kernel. It
// is safe for concurrent use.
type Heap struct {
	pages       *PageAllocator
	growthPages int
	logger      *log.Logger

	mu    sync.Mutex
	spans []*span
	// live maps the address of each outstanding allocation to the number of
	// bytes reserved for it.
	live  map[uintptr]int
	stats Stats
}

var _ Allocator = (*Heap)(nil)

// NewHeap creates an empty heap. No memory is mapped until the first
// allocation. growthPages <= 0 selects DefaultGrowthPages and a nil logger
// discards growth messages.
func NewHeap(mapper Mapper, growthPages int, logger *log.Logger) *Heap {
	if growthPages <= 0 {
		growthPages = DefaultGrowthPages
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Heap{
		pages:       NewPageAllocator(mapper),
		growthPages: growthPages,
		logger:      logger,
		live:        make(map[uintptr]int),
	}
}

// GrowthSize returns how many bytes the heap maps when it can't satisfy a
// request of size bytes. Normally that is the standing growth candidate; a
// request larger than the candidate gets a mapping sized to fit it, plus room
// for one more bookkeeping record. Sizes above MaxSize are clamped to it.
func (h *Heap) GrowthSize(size int) int {
	candidate := h.growthPages * PageSize
	if size <= candidate {
		return candidate
	}
	size = min(size, MaxSize)
	return roundUp(roundUp(size, wordSize)+wordSize, PageSize)
}

// Alloc implements Allocator.Alloc. The returned memory is always zeroed.
func (h *Heap) Alloc(size, align int) (Block, error) {
	l := Layout{Size: size, Align: align}
	if err := l.validate(); err != nil {
		return Block{}, err
	}
	if size == 0 {
		return dangling(align), nil
	}
	if err := l.checkLimits(); err != nil {
		return Block{}, err
	}

	reserved := roundUp(size, minChunk)

	h.mu.Lock()
	defer h.mu.Unlock()

	s, off, ok := h.take(reserved, align)
	if !ok {
		if err := h.grow(l); err != nil {
			return Block{}, err
		}
		if s, off, ok = h.take(reserved, align); !ok {
			return Block{}, fmt.Errorf("%w: %v doesn't fit after growth", ErrAllocFailed, l)
		}
	}

	mem := s.mem[off : off+size : off+size]
	clear(mem)

	addr := s.base + uintptr(off)
	h.live[addr] = reserved
	h.stats.InUse += reserved
	h.stats.Allocations++

	return Block{Addr: addr, Bytes: mem}, nil
}

func (h *Heap) take(size, align int) (*span, int, bool) {
	for _, s := range h.spans {
		if off, ok := s.take(size, align); ok {
			return s, off, true
		}
	}
	return nil, 0, false
}

// grow maps a new span big enough for l. Callers must hold h.mu.
func (h *Heap) grow(l Layout) error {
	size := h.GrowthSize(l.Size)
	h.logger.Printf("expanding heap by %d bytes (requested %v)", size, l)

	b, err := h.pages.Allocate(Layout{Size: size, Align: PageSize})
	if err != nil {
		h.logger.Printf("heap growth failed: %v", err)
		return fmt.Errorf("growing heap by %d bytes: %w", size, err)
	}

	h.spans = append(h.spans, &span{
		base: b.Addr,
		mem:  b.Bytes,
		free: []extent{{0, b.Len()}},
	})
	h.stats.Spans++
	h.stats.Mapped += b.Len()
	h.stats.Growths++

	h.logger.Printf("claimed span [%#x, %#x)", b.Addr, b.Addr+uintptr(b.Len()))
	return nil
}

// Free implements Allocator.Free. Freed memory stays with the heap, spans
// are never returned to the kernel.
func (h *Heap) Free(b Block) error {
	if b.Len() == 0 {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	reserved, ok := h.live[b.Addr]
	if !ok || b.Len() > reserved {
		return fmt.Errorf("%w: %#x", ErrInvalidFree, b.Addr)
	}

	for _, s := range h.spans {
		if !s.contains(b.Addr) {
			continue
		}
		s.give(extent{int(b.Addr - s.base), reserved})
		delete(h.live, b.Addr)
		h.stats.InUse -= reserved
		h.stats.Allocations--
		return nil
	}

	return fmt.Errorf("%w: %#x is outside every span", ErrInvalidFree, b.Addr)
}

// Stats returns a snapshot of the heap's usage.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}
