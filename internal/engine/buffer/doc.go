// Package buffer provides a thread-safe, line-oriented text buffer.
//
// The buffer stores a document as a slice of lines without terminators and
// remembers the line ending style of the text it was loaded from, so Text
// round-trips the original file byte for byte when nothing changed.
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("say hello\nsay $(name)\n")
//
//	// Replace a whole line
//	change, err := buf.ReplaceLine(1, "$say $(name)")
//
//	// Replace an arbitrary range
//	change, err = buf.Replace(buffer.Range{
//	    Start: buffer.Point{Line: 0, Column: 4},
//	    End:   buffer.Point{Line: 0, Column: 9},
//	}, "goodbye")
//
// Every mutation returns a Change that can be inverted for undo and bumps the
// buffer revision.
package buffer
