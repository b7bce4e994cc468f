package modes

import (
	"strings"
)

// Stacker receives every change a pass made. It never does I/O.
type Stacker interface {
	PutFlag(on bool, ch byte)
	PutStatus(on bool, ch byte, m Member)
	// PutExternal param may be empty for externals without an argument.
	PutExternal(on bool, ch byte, param string)
	PutListEntry(on bool, ch byte, mask string)
}

// Multi fans changes out to several stackers, typically one rendering
// nicknames for clients and one rendering ids for servers.
type Multi []Stacker

// PutFlag implements Stacker.
func (m Multi) PutFlag(on bool, ch byte) {
	for _, s := range m {
		s.PutFlag(on, ch)
	}
}

// PutStatus implements Stacker.
func (m Multi) PutStatus(on bool, ch byte, member Member) {
	for _, s := range m {
		s.PutStatus(on, ch, member)
	}
}

// PutExternal implements Stacker.
func (m Multi) PutExternal(on bool, ch byte, param string) {
	for _, s := range m {
		s.PutExternal(on, ch, param)
	}
}

// PutListEntry implements Stacker.
func (m Multi) PutListEntry(on bool, ch byte, mask string) {
	for _, s := range m {
		s.PutListEntry(on, ch, mask)
	}
}

// FlushFunc receives one complete chunk from a Buffer: the sign prefixed
// character run and its parameters.
type FlushFunc func(modes string, params []string)

// Buffer is a Stacker that coalesces changes into "+ab-c x y" chunks. When
// the next change would push the chunk past MaxLen bytes or MaxParams
// parameters the chunk is handed to Flush and a new one begins.
type Buffer struct {
	// MaxLen bounds the length of the modes and parameters joined by spaces,
	// 0 is unbounded.
	MaxLen int
	// MaxParams bounds the parameters per chunk, 0 is unbounded.
	MaxParams int
	// UseIDs renders status members by id instead of name.
	UseIDs bool
	// Flush receives every completed chunk.
	Flush FlushFunc

	chars  []byte
	params []string
	sign   byte
	length int
}

// NewBuffer creates a buffer stacker.
func NewBuffer(maxLen, maxParams int, flush FlushFunc) *Buffer {
	return &Buffer{
		MaxLen:    maxLen,
		MaxParams: maxParams,
		Flush:     flush,
	}
}

// PutFlag implements Stacker.
func (b *Buffer) PutFlag(on bool, ch byte) {
	b.put(on, ch, "", false)
}

// PutStatus implements Stacker.
func (b *Buffer) PutStatus(on bool, ch byte, m Member) {
	name := m.MemberName()
	if b.UseIDs {
		name = m.MemberID()
	}
	b.put(on, ch, name, true)
}

// PutExternal implements Stacker.
func (b *Buffer) PutExternal(on bool, ch byte, param string) {
	b.put(on, ch, param, len(param) > 0)
}

// PutListEntry implements Stacker.
func (b *Buffer) PutListEntry(on bool, ch byte, mask string) {
	b.put(on, ch, mask, true)
}

func (b *Buffer) put(on bool, ch byte, param string, hasParam bool) {
	sign := byte('-')
	if on {
		sign = '+'
	}

	if len(b.chars) > 0 {
		grow := 1
		if sign != b.sign {
			grow++
		}
		if hasParam {
			grow += 1 + len(param)
		}

		overLen := b.MaxLen > 0 && b.length+grow > b.MaxLen
		overParams := hasParam && b.MaxParams > 0 && len(b.params) >= b.MaxParams
		if overLen || overParams {
			b.Done()
		}
	}

	if len(b.chars) == 0 || sign != b.sign {
		b.chars = append(b.chars, sign)
		b.sign = sign
		b.length++
	}
	b.chars = append(b.chars, ch)
	b.length++

	if hasParam {
		b.params = append(b.params, param)
		b.length += 1 + len(param)
	}
}

// Done flushes whatever is pending. It does nothing when empty.
func (b *Buffer) Done() {
	if len(b.chars) == 0 {
		return
	}

	modes, params := string(b.chars), b.params
	b.chars = nil
	b.params = nil
	b.sign = 0
	b.length = 0

	if b.Flush != nil {
		b.Flush(modes, params)
	}
}

// Empty reports whether nothing is pending.
func (b *Buffer) Empty() bool {
	return len(b.chars) == 0
}

// String renders the pending chunk.
func (b *Buffer) String() string {
	if len(b.params) == 0 {
		return string(b.chars)
	}
	return string(b.chars) + " " + strings.Join(b.params, " ")
}
