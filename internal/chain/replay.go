package chain

import (
	"encoding/json"
	"io"
	"os"
)

// ReplaySource plays back recorded frames. Once exhausted it holds the last
// metrics and leaves the lists alone.
type ReplaySource struct {
	frames []Frame
	pos    int
}

// NewReplaySource wraps frames recorded earlier, oldest first.
func NewReplaySource(frames []Frame) *ReplaySource {
	return &ReplaySource{frames: frames}
}

// OpenReplaySource reads a JSONL frame log from disk.
func OpenReplaySource(path string) (*ReplaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	frames, err := ReadFrames(f)
	if err != nil {
		return nil, err
	}
	return NewReplaySource(frames), nil
}

// ReadFrames decodes a stream of JSON frames until EOF.
func ReadFrames(r io.Reader) ([]Frame, error) {
	dec := json.NewDecoder(r)
	var frames []Frame
	for {
		var f Frame
		if err := dec.Decode(&f); err != nil {
			if err == io.EOF {
				return frames, nil
			}
			return nil, err
		}
		frames = append(frames, f)
	}
}

// Initial returns the first recorded frame.
func (s *ReplaySource) Initial() Frame {
	if len(s.frames) == 0 {
		return Frame{Metrics: MetricsSnapshot{Values: map[string]float64{}}}
	}
	s.pos = 1
	return s.frames[0]
}

// Next returns the next recorded frame, or prev unchanged when none are left.
func (s *ReplaySource) Next(prev MetricsSnapshot) Frame {
	if s.pos >= len(s.frames) {
		return Frame{Metrics: prev.Clone()}
	}
	f := s.frames[s.pos]
	s.pos++
	return f
}

// Remaining reports how many frames have not been played yet.
func (s *ReplaySource) Remaining() int {
	if s.pos >= len(s.frames) {
		return 0
	}
	return len(s.frames) - s.pos
}
