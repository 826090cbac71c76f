package resp

// Buffer is an append-only byte queue shared between a transport and a
// decoder. The transport appends arriving bytes with Write, the decoder
// inspects them with Bytes and consumes them with Discard, so bytes of an
// incomplete trailing reply stay in the buffer across decode calls.
//
// The zero value is an empty buffer ready to use. A Buffer is not safe for
// concurrent use.
type Buffer struct {
	data []byte
}

// Write appends p to the buffer. It never fails; the error is there to
// satisfy io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// WriteString appends s to the buffer.
func (b *Buffer) WriteString(s string) {
	b.data = append(b.data, s...)
}

// Bytes returns the unconsumed bytes without consuming them. The returned
// slice is only valid until the next Write or Discard.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of unconsumed bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Discard consumes the first n bytes and returns the number of bytes
// discarded, which is less than n if the buffer ran out.
func (b *Buffer) Discard(n int) int {
	if n > len(b.data) {
		n = len(b.data)
	}
	b.data = b.data[n:]
	return n
}
