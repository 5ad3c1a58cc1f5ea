package session

// Dialog is a single-line text buffer with a cursor measured in runes.
type Dialog struct {
	buf []rune
	pos int
}

// Value returns the current buffer contents.
func (d *Dialog) Value() string { return string(d.buf) }

// Cursor returns the cursor offset in runes, between 0 and the buffer length.
func (d *Dialog) Cursor() int { return d.pos }

// Insert places r at the cursor and advances past it.
func (d *Dialog) Insert(r rune) {
	d.buf = append(d.buf, 0)
	copy(d.buf[d.pos+1:], d.buf[d.pos:])
	d.buf[d.pos] = r
	d.pos++
}

// Backspace deletes the rune before the cursor. It does nothing at the start.
func (d *Dialog) Backspace() {
	if d.pos == 0 {
		return
	}
	d.buf = append(d.buf[:d.pos-1], d.buf[d.pos:]...)
	d.pos--
}

// Left moves the cursor one rune towards the start.
func (d *Dialog) Left() {
	if d.pos > 0 {
		d.pos--
	}
}

// Right moves the cursor one rune towards the end.
func (d *Dialog) Right() {
	if d.pos < len(d.buf) {
		d.pos++
	}
}

// Submit returns the buffer contents and clears it.
func (d *Dialog) Submit() string {
	v := d.Value()
	d.Reset()
	return v
}

// Reset empties the buffer.
func (d *Dialog) Reset() {
	d.buf = nil
	d.pos = 0
}
