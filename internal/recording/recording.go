// Package recording reads and writes hand-detection streams as JSON lines:
//
//	{"t":0.016,"hand":[{"x":0.5,"y":0.5,"z":0},...]}
//	{"t":0.033,"hand":null}
//
// t is seconds since the start of the recording; hand is null when no hand
// was detected.
package recording

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"hand-sword-fx/internal/gesture"
)

// ErrBadLine marks a line that is not a valid sample.
var ErrBadLine = errors.New("recording: bad line")

// Sample is one detector result.
type Sample struct {
	T    float64            `json:"t"`
	Hand []gesture.Landmark `json:"hand"`
}

// Pose returns the sample as a hand pose, nil when no hand was detected.
// The pose is not validated.
func (s Sample) Pose() *gesture.HandPose {
	if s.Hand == nil {
		return nil
	}
	return &gesture.HandPose{Landmarks: s.Hand}
}

// FromPose builds a sample from a pose, nil meaning no hand.
func FromPose(t float64, p *gesture.HandPose) Sample {
	s := Sample{T: t}
	if p != nil {
		s.Hand = append([]gesture.Landmark(nil), p.Landmarks...)
	}
	return s
}

// Reader decodes samples one line at a time.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &Reader{sc: sc}
}

// Next returns the next sample, or io.EOF at the end. Blank lines are
// skipped. A malformed line returns an error wrapping ErrBadLine; reading
// may continue after it.
func (r *Reader) Next() (Sample, error) {
	for r.sc.Scan() {
		r.line++
		b := r.sc.Bytes()
		if len(bytes.TrimSpace(b)) == 0 {
			continue
		}
		var s Sample
		if err := json.Unmarshal(b, &s); err != nil {
			return Sample{}, fmt.Errorf("%w %d: %w", ErrBadLine, r.line, err)
		}
		if s.Hand != nil && len(s.Hand) != gesture.NumLandmarks {
			return Sample{}, fmt.Errorf("%w %d: %d landmarks", ErrBadLine, r.line, len(s.Hand))
		}
		return s, nil
	}
	if err := r.sc.Err(); err != nil {
		return Sample{}, fmt.Errorf("recording: read: %w", err)
	}
	return Sample{}, io.EOF
}

// Line is the number of the last line read.
func (r *Reader) Line() int { return r.line }

// ReadAll reads every sample, stopping at the first error.
func ReadAll(rd io.Reader) ([]Sample, error) {
	r := NewReader(rd)
	var out []Sample
	for {
		s, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
}

// Writer encodes samples as JSON lines. It is safe for concurrent use.
type Writer struct {
	mu  sync.Mutex
	bw  *bufio.Writer
	enc *json.Encoder
	n   int
}

func NewWriter(w io.Writer) *Writer {
	bw := bufio.NewWriter(w)
	return &Writer{bw: bw, enc: json.NewEncoder(bw)}
}

// Write appends one sample.
func (w *Writer) Write(s Sample) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(s); err != nil {
		return fmt.Errorf("recording: write: %w", err)
	}
	w.n++
	return nil
}

// Count is the number of samples written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

// Flush writes buffered samples to the underlying writer.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bw.Flush()
}
