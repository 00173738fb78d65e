// Package timing converts between timeline ticks, frames, and clock time.
//
// Project times are integers in units of the document's editRate (ticks per
// second). The editor displays them as "seconds;frames" at the video frame
// rate, which FrameStamp reproduces.
package timing

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidRate is returned for a frame rate that is not positive.
var ErrInvalidRate = errors.New("frame rate must be positive")

// ErrNegativeFrame is returned when a stamp would fall before zero.
var ErrNegativeFrame = errors.New("frame number must be non-negative")

// FrameStamp is a point in time expressed as a frame number at a frame rate.
type FrameStamp struct {
	Frame int64
	Rate  int64
}

// New returns a validated FrameStamp.
func New(frame, rate int64) (FrameStamp, error) {
	if rate <= 0 {
		return FrameStamp{}, fmt.Errorf("%w, got %d", ErrInvalidRate, rate)
	}
	if frame < 0 {
		return FrameStamp{}, fmt.Errorf("%w, got %d", ErrNegativeFrame, frame)
	}
	return FrameStamp{Frame: frame, Rate: rate}, nil
}

// FromSeconds rounds seconds to the nearest frame at rate.
func FromSeconds(seconds float64, rate int64) (FrameStamp, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return FrameStamp{}, fmt.Errorf("seconds must be finite, got %v", seconds)
	}
	return New(int64(math.Round(seconds*float64(rate))), rate)
}

// FromTicks converts a timeline position in editRate ticks to a stamp at
// frameRate.
func FromTicks(ticks float64, editRate, frameRate int64) (FrameStamp, error) {
	if editRate <= 0 {
		return FrameStamp{}, fmt.Errorf("edit rate: %w", ErrInvalidRate)
	}
	return FromSeconds(ticks/float64(editRate), frameRate)
}

// FromDuration rounds d to the nearest frame at rate.
func FromDuration(d time.Duration, rate int64) (FrameStamp, error) {
	return FromSeconds(d.Seconds(), rate)
}

// Seconds returns the stamp as fractional seconds.
func (f FrameStamp) Seconds() float64 {
	return float64(f.Frame) / float64(f.Rate)
}

// Duration returns the stamp as a time.Duration.
func (f FrameStamp) Duration() time.Duration {
	return time.Duration(f.Seconds() * float64(time.Second))
}

// Split returns whole seconds and the remaining frames.
func (f FrameStamp) Split() (seconds, frames int64) {
	return f.Frame / f.Rate, f.Frame % f.Rate
}

// String formats the stamp as "seconds;frames".
func (f FrameStamp) String() string {
	if f.Rate <= 0 {
		return "0;0"
	}
	s, fr := f.Split()
	return fmt.Sprintf("%d;%d", s, fr)
}

// Clock formats the stamp as "H:MM:SS;FF".
func (f FrameStamp) Clock() string {
	if f.Rate <= 0 {
		return "0:00:00;00"
	}
	s, fr := f.Split()
	return fmt.Sprintf("%d:%02d:%02d;%02d", s/3600, (s/60)%60, s%60, fr)
}

// Compare returns -1, 0, or 1 depending on whether f is before, equal to, or
// after o.
func (f FrameStamp) Compare(o FrameStamp) int {
	a, b, _ := common(f, o)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Add returns f+o at the least common multiple of both rates.
func (f FrameStamp) Add(o FrameStamp) FrameStamp {
	a, b, rate := common(f, o)
	return FrameStamp{Frame: a + b, Rate: rate}
}

// Sub returns f-o at the least common multiple of both rates.
func (f FrameStamp) Sub(o FrameStamp) (FrameStamp, error) {
	a, b, rate := common(f, o)
	return New(a-b, rate)
}

func common(f, o FrameStamp) (int64, int64, int64) {
	rate := lcm(f.Rate, o.Rate)
	return f.Frame * (rate / f.Rate), o.Frame * (rate / o.Rate), rate
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int64) int64 {
	return a / gcd(a, b) * b
}
