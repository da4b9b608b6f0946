package sim

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"chainwatch-sim/internal/chain"
)

// ReplayLog replays recorded frames from r to writer. A speed >0 scales the
// recorded gaps; 2 plays twice as fast. If speed <= 0, frames are written
// back to back, in one batch when the writer supports it.
func ReplayLog(r io.Reader, writer FrameWriter, speed float64) error {
	if speed <= 0 {
		if bw, ok := writer.(batchFrameWriter); ok {
			frames, err := chain.ReadFrames(r)
			if err != nil {
				return err
			}
			return bw.WriteBatch(frames)
		}
	}
	dec := json.NewDecoder(r)
	var prev time.Time
	for {
		var frame chain.Frame
		if err := dec.Decode(&frame); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		ts := frame.Metrics.Timestamp
		if !prev.IsZero() && speed > 0 {
			diff := ts.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				time.Sleep(diff)
			}
		}
		if err := writer.Write(frame); err != nil {
			return err
		}
		prev = ts
	}
}

// ReplayLogFile opens a file and replays its frames.
func ReplayLogFile(path string, writer FrameWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayLog(f, writer, speed)
}
