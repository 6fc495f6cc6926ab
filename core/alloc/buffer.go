package alloc

import "errors"

// minBufferCap is the capacity of a buffer's first allocation.
const minBufferCap = 128

// Buffer is a growable byte buffer whose storage comes from an Allocator
// rather than the Go heap. The zero value is not usable, create buffers with
// NewBuffer.
type Buffer struct {
	a   Allocator
	blk Block
	n   int
}

// NewBuffer creates an empty buffer backed by a. Nothing is allocated until
// the first write.
func NewBuffer(a Allocator) *Buffer {
	return &Buffer{a: a}
}

// Len returns the number of bytes written.
func (b *Buffer) Len() int {
	return b.n
}

// Cap returns the number of bytes the buffer can hold without growing.
func (b *Buffer) Cap() int {
	return b.blk.Len()
}

// Bytes returns the buffered bytes. The slice aliases allocator memory and is
// only valid until the next write, Reset or Release.
func (b *Buffer) Bytes() []byte {
	return b.blk.Bytes[:b.n]
}

// String returns a copy of the buffered bytes.
func (b *Buffer) String() string {
	return string(b.Bytes())
}

// Grow makes room for at least n more bytes.
func (b *Buffer) Grow(n int) error {
	if b.n+n <= b.Cap() {
		return nil
	}

	newCap := 2 * b.Cap()
	if newCap < minBufferCap {
		newCap = minBufferCap
	}
	if newCap < b.n+n {
		newCap = b.n + n
	}

	blk, err := b.a.Alloc(newCap, 1)
	if err != nil {
		return err
	}
	copy(blk.Bytes, b.Bytes())

	if err := b.a.Free(b.blk); err != nil {
		return errors.Join(err, b.a.Free(blk))
	}
	b.blk = blk
	return nil
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	if err := b.Grow(len(p)); err != nil {
		return 0, err
	}
	b.n += copy(b.blk.Bytes[b.n:], p)
	return len(p), nil
}

// WriteByte implements io.ByteWriter.
func (b *Buffer) WriteByte(c byte) error {
	if err := b.Grow(1); err != nil {
		return err
	}
	b.blk.Bytes[b.n] = c
	b.n++
	return nil
}

// Reset empties the buffer but keeps its memory.
func (b *Buffer) Reset() {
	b.n = 0
}

// Release returns the buffer's memory to the allocator and empties it.
func (b *Buffer) Release() error {
	blk := b.blk
	b.blk = Block{}
	b.n = 0
	return b.a.Free(blk)
}
