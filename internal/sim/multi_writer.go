package sim

import (
	"errors"

	"chainwatch-sim/internal/chain"
)

// MultiWriter fans frames out to several writers. A failing writer does not
// stop the others; their errors are joined.
type MultiWriter struct {
	writers []FrameWriter
}

// NewMultiWriter creates a new MultiWriter. Nil writers are skipped.
func NewMultiWriter(ws ...FrameWriter) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range ws {
		if w != nil {
			mw.writers = append(mw.writers, w)
		}
	}
	return mw
}

// Len reports the number of wrapped writers.
func (mw *MultiWriter) Len() int { return len(mw.writers) }

// Write sends a frame to all writers.
func (mw *MultiWriter) Write(frame chain.Frame) error {
	var errs []error
	for _, w := range mw.writers {
		if err := w.Write(frame); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteBatch sends multiple frames to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(frames []chain.Frame) error {
	var errs []error
	for _, w := range mw.writers {
		if bw, ok := w.(batchFrameWriter); ok {
			if err := bw.WriteBatch(frames); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		for _, f := range frames {
			if err := w.Write(f); err != nil {
				errs = append(errs, err)
				break
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every writer that supports it.
func (mw *MultiWriter) Close() error {
	var errs []error
	for _, w := range mw.writers {
		if c, ok := w.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
