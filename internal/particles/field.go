// Package particles animates the decorative background field. It is a
// separate store from the timeline list and never reads or writes it.
package particles

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	DefaultCount        = 50
	DefaultTick         = 50 * time.Millisecond
	DefaultLinkDistance = 150.0

	maxSpeed   = 0.25
	maxOpacity = 0.3
	linkReach  = 2
)

type Particle struct {
	X, Y   float64
	VX, VY float64
}

// Link joins two particles closer than the link distance.
type Link struct {
	From, To int
	Opacity  float64
}

// Field is a fixed set of particles drifting across a wrapping plane.
type Field struct {
	mu        sync.RWMutex
	width     float64
	height    float64
	particles []Particle
}

// NewField scatters n particles over a width x height plane. A nil rng uses
// the package-level source.
func NewField(n int, width, height float64, rng *rand.Rand) *Field {
	if n < 0 {
		n = 0
	}
	float := rand.Float64
	if rng != nil {
		float = rng.Float64
	}

	ps := make([]Particle, n)
	for i := range ps {
		ps[i] = Particle{
			X:  float() * width,
			Y:  float() * height,
			VX: (float() - 0.5) * 2 * maxSpeed,
			VY: (float() - 0.5) * 2 * maxSpeed,
		}
	}
	return &Field{width: width, height: height, particles: ps}
}

// Step moves every particle by its velocity, wrapping at the edges.
func (f *Field) Step() {
	f.Advance(1)
}

func (f *Field) Advance(ticks int) {
	if ticks <= 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.particles {
		p := &f.particles[i]
		p.X = wrap(p.X+p.VX*float64(ticks), f.width)
		p.Y = wrap(p.Y+p.VY*float64(ticks), f.height)
	}
}

// Resize changes the plane and folds every particle back inside it.
func (f *Field) Resize(width, height float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.width, f.height = width, height
	for i := range f.particles {
		f.particles[i].X = wrap(f.particles[i].X, width)
		f.particles[i].Y = wrap(f.particles[i].Y, height)
	}
}

func (f *Field) Size() (width, height float64) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.width, f.height
}

// Particles returns a copy of the current positions.
func (f *Field) Particles() []Particle {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Links pairs each particle with the next two in order when they are closer
// than maxDist. Opacity fades linearly from 0.3 to 0 at maxDist.
func (f *Field) Links(maxDist float64) []Link {
	if maxDist <= 0 {
		return nil
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []Link
	for i, p := range f.particles {
		for j := i + 1; j <= i+linkReach && j < len(f.particles); j++ {
			q := f.particles[j]
			d := math.Hypot(p.X-q.X, p.Y-q.Y)
			if d < maxDist {
				out = append(out, Link{From: i, To: j, Opacity: maxOpacity * (1 - d/maxDist)})
			}
		}
	}
	return out
}

func wrap(v, size float64) float64 {
	if size <= 0 {
		return 0
	}
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	return v
}
