// Package bitmap provides the growable bit vector used to describe
// stack-slot liveness at instruction safepoints.
package bitmap

const bitsPerWord = 64

// Builder is a mutable bit vector that grows as bits are set. Reads past
// the current length return false instead of growing, so a builder can be
// queried for slots it has never seen.
type Builder struct {
	words  []uint64
	length int
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder { return &Builder{} }

// Length returns the number of tracked bit positions.
func (b *Builder) Length() int { return b.length }

// SetLength truncates or extends the tracked range. Shrinking clears the
// dropped bits so they cannot resurface if the builder grows again.
func (b *Builder) SetLength(length int) {
	if length < 0 {
		panic("bitmap: negative length")
	}
	if length < b.length {
		word := length / bitsPerWord
		if word < len(b.words) {
			b.words[word] &= 1<<uint(length%bitsPerWord) - 1
			for i := word + 1; i < len(b.words); i++ {
				b.words[i] = 0
			}
		}
	}
	b.length = length
}

// Get reports whether bit position is set. Positions at or beyond the
// current length read as false.
func (b *Builder) Get(position int) bool {
	if position < 0 {
		panic("bitmap: negative position")
	}
	if position >= b.length {
		return false
	}
	word := position / bitsPerWord
	if word >= len(b.words) {
		return false
	}
	return b.words[word]>>uint(position%bitsPerWord)&1 != 0
}

// Set assigns bit position, extending the length when position is past
// the end.
func (b *Builder) Set(position int, value bool) {
	if position < 0 {
		panic("bitmap: negative position")
	}
	word := position / bitsPerWord
	if value {
		for word >= len(b.words) {
			b.words = append(b.words, 0)
		}
		b.words[word] |= 1 << uint(position%bitsPerWord)
	} else if word < len(b.words) {
		b.words[word] &^= 1 << uint(position%bitsPerWord)
	}
	if position >= b.length {
		b.length = position + 1
	}
}

// SetRange assigns every bit from min through max inclusive.
func (b *Builder) SetRange(min, max int, value bool) {
	if min > max {
		panic("bitmap: range minimum above maximum")
	}
	for i := min; i <= max; i++ {
		b.Set(i, value)
	}
}

// Bytes packs the vector into bytes, eight positions per byte, lowest
// position in the least significant bit. This is the form stack maps are
// emitted in.
func (b *Builder) Bytes() []byte {
	out := make([]byte, (b.length+7)/8)
	for i := 0; i < b.length; i++ {
		if b.Get(i) {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

func (b *Builder) String() string {
	buf := make([]byte, b.length)
	for i := range buf {
		if b.Get(i) {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}
