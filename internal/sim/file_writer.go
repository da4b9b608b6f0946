package sim

import (
	"encoding/json"
	"os"

	"chainwatch-sim/internal/chain"
)

// FileWriter records frames to a JSONL file and, optionally, mirrors feed
// items into a second JSONL file.
type FileWriter struct {
	frameFile *os.File
	feedFile  *os.File
	frameEnc  *json.Encoder
	feedEnc   *json.Encoder
}

// NewFileWriter creates a FileWriter. feedPath may be empty to skip the feed log.
func NewFileWriter(framePath, feedPath string) (*FileWriter, error) {
	ff, err := os.Create(framePath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{frameFile: ff, frameEnc: json.NewEncoder(ff)}
	if feedPath != "" {
		df, err := os.Create(feedPath)
		if err != nil {
			ff.Close()
			return nil, err
		}
		fw.feedFile = df
		fw.feedEnc = json.NewEncoder(df)
	}
	return fw, nil
}

// Write logs a single frame.
func (f *FileWriter) Write(frame chain.Frame) error {
	if err := f.frameEnc.Encode(frame); err != nil {
		return err
	}
	if frame.Feed != nil && f.feedEnc != nil {
		return f.feedEnc.Encode(frame.Feed)
	}
	return nil
}

// WriteBatch logs multiple frames.
func (f *FileWriter) WriteBatch(frames []chain.Frame) error {
	for _, fr := range frames {
		if err := f.Write(fr); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.frameFile != nil {
		if e := f.frameFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.feedFile != nil {
		if e := f.feedFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
