package tuitest

import (
	"bytes"
	"io"
)

// terminalQuery is an escape sequence a TUI may send to probe the terminal,
// together with the answer a real terminal would give.
type terminalQuery struct {
	ask    []byte
	answer []byte
}

// Cursor position, foreground and background colour, in both OSC terminators.
var terminalQueries = []terminalQuery{
	{ask: []byte("\x1b[6n"), answer: []byte("\x1b[1;1R")},
	{ask: []byte("\x1b]10;?\x07"), answer: []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{ask: []byte("\x1b]10;?\x1b\\"), answer: []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{ask: []byte("\x1b]11;?\x07"), answer: []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{ask: []byte("\x1b]11;?\x1b\\"), answer: []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

const (
	responderBufferLimit = 256
	responderKeepTail    = 64
)

type terminalResponder struct {
	w   io.Writer
	buf []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, buf: make([]byte, 0, responderBufferLimit)}
}

// Process answers every query found in chunk. A tail of the stream is kept so
// a query split across reads is still seen.
func (tr *terminalResponder) Process(chunk []byte) {
	tr.buf = append(tr.buf, chunk...)
	for tr.answerNext() {
	}
	if len(tr.buf) > responderBufferLimit {
		tr.buf = append(tr.buf[:0], tr.buf[len(tr.buf)-responderKeepTail:]...)
	}
}

// answerNext replies to the earliest query in the buffer and drops everything
// up to its end.
func (tr *terminalResponder) answerNext() bool {
	first, end := -1, 0
	var answer []byte
	for _, q := range terminalQueries {
		idx := bytes.Index(tr.buf, q.ask)
		if idx >= 0 && (first < 0 || idx < first) {
			first, end, answer = idx, idx+len(q.ask), q.answer
		}
	}
	if first < 0 {
		return false
	}
	tr.buf = tr.buf[end:]
	_, _ = tr.w.Write(answer)
	return true
}
