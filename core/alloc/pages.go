// Package alloc supplies dynamic memory carved from kernel mappings.
//
// PageAllocator hands out whole mappings. Heap sits on top of it, sub-dividing
// claimed spans and growing by mapping more pages when it runs dry.
package alloc

import (
	"errors"
	"fmt"
	"math"

	"github.com/josephlewis42/minish/core/kernel"
)

// PageSize is the allocation granularity of the page allocator.
const PageSize = kernel.PageSize

// MaxSize is the largest request either allocator accepts. Anything bigger
// can't be rounded up to whole pages without overflowing.
const MaxSize = math.MaxInt&^(PageSize-1) - 2*PageSize

var (
	// ErrAllocFailed is returned when memory can't be supplied.
	ErrAllocFailed = errors.New("alloc: allocation failed")
	// ErrInvalidLayout is returned for negative sizes or alignments that aren't
	// powers of two.
	ErrInvalidLayout = errors.New("alloc: invalid layout")
	// ErrPartialRelease is returned when releasing less than a whole mapping.
	ErrPartialRelease = errors.New("alloc: partial release of a mapping")
	// ErrInvalidFree is returned when freeing memory the heap doesn't own or
	// that is already free.
	ErrInvalidFree = errors.New("alloc: invalid free")
)

// Mapper is the memory half of the kernel services.
type Mapper = kernel.VMem

// Layout describes a memory request.
type Layout struct {
	Size  int
	Align int
}

func (l Layout) validate() error {
	if l.Size < 0 || l.Align <= 0 || l.Align&(l.Align-1) != 0 {
		return fmt.Errorf("%w: size=%d align=%d", ErrInvalidLayout, l.Size, l.Align)
	}
	return nil
}

// checkLimits reports layouts that are valid but can never be satisfied.
func (l Layout) checkLimits() error {
	if l.Align > PageSize {
		return fmt.Errorf("%w: alignment %d exceeds the page size", ErrAllocFailed, l.Align)
	}
	if l.Size > MaxSize {
		return fmt.Errorf("%w: %v is too large", ErrAllocFailed, l)
	}
	return nil
}

func (l Layout) String() string {
	return fmt.Sprintf("Layout{size: %d, align: %d}", l.Size, l.Align)
}

// Block is a piece of allocated memory.
type Block struct {
	// Addr is the address of the first byte. Zero-length blocks have a
	// dangling, non-zero address equal to their alignment.
	Addr uintptr
	// Bytes is the memory itself.
	Bytes []byte
}

// Len returns the size of the block in bytes.
func (b Block) Len() int {
	return len(b.Bytes)
}

func dangling(align int) Block {
	return Block{Addr: uintptr(align), Bytes: []byte{}}
}

func roundUp(n, multiple int) int {
	return (n + multiple - 1) / multiple * multiple
}

func pagesFor(size int) int {
	return roundUp(size, PageSize) / PageSize
}

// PageAllocator allocates whole, zeroed pages straight from the kernel. Every
// block is its own mapping and must be released as a unit.
type PageAllocator struct {
	mapper Mapper
}

// NewPageAllocator creates a page allocator over mapper.
func NewPageAllocator(mapper Mapper) *PageAllocator {
	return &PageAllocator{mapper: mapper}
}

// Allocate maps enough pages to hold l. The block covers every mapped page so
// it may be longer than requested.
func (p *PageAllocator) Allocate(l Layout) (Block, error) {
	if err := l.validate(); err != nil {
		return Block{}, err
	}
	if l.Size == 0 {
		return dangling(l.Align), nil
	}
	if err := l.checkLimits(); err != nil {
		return Block{}, err
	}

	m, err := p.mapper.CreateMapping(pagesFor(l.Size))
	if err != nil {
		return Block{}, fmt.Errorf("%w: %w", ErrAllocFailed, err)
	}

	return Block{Addr: m.Addr, Bytes: m.Mem}, nil
}

// Deallocate unmaps a block returned by Allocate.
func (p *PageAllocator) Deallocate(b Block) error {
	if b.Len() == 0 {
		return nil
	}
	if b.Len()%PageSize != 0 {
		return ErrPartialRelease
	}
	return p.mapper.RemoveMapping(kernel.Mapping{Addr: b.Addr, Mem: b.Bytes})
}
