package chart

import (
	"slices"
	"sync"
	"time"

	"github.com/okian/sensorboard/internal/domain/status"
)

// Frame is one drawn chart image.
type Frame struct {
	Data        []byte
	ContentType string
	Version     uint64
	Dataset     status.Dataset
	DrawnAt     time.Time
}

// Surface is the display target charts are drawn on. It holds at most one frame.
// It is safe for concurrent use.
type Surface struct {
	mu      sync.RWMutex
	frame   Frame
	drawn   bool
	version uint64
}

// NewSurface returns an empty surface.
func NewSurface() *Surface {
	return &Surface{}
}

// Draw replaces the current frame and returns its version.
func (s *Surface) Draw(data []byte, contentType string, ds status.Dataset) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	s.frame = Frame{
		Data:        slices.Clone(data),
		ContentType: contentType,
		Version:     s.version,
		Dataset:     ds,
		DrawnAt:     time.Now(),
	}
	s.drawn = true
	return s.version
}

// Clear removes the frame if it is still the given version.
func (s *Surface) Clear(version uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.drawn || s.frame.Version != version {
		return false
	}
	s.frame = Frame{}
	s.drawn = false
	return true
}

// Frame returns a copy of the current frame.
func (s *Surface) Frame() (Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.drawn {
		return Frame{}, false
	}
	f := s.frame
	f.Data = slices.Clone(s.frame.Data)
	return f, true
}

// Empty reports whether nothing is drawn.
func (s *Surface) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.drawn
}
