package particles

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedField(ps ...Particle) *Field {
	return &Field{width: 100, height: 100, particles: ps}
}

func TestNewField_WithinBounds(t *testing.T) {
	f := NewField(DefaultCount, 800, 600, rand.New(rand.NewPCG(1, 2)))

	ps := f.Particles()
	require.Len(t, ps, DefaultCount)
	for _, p := range ps {
		assert.True(t, p.X >= 0 && p.X < 800)
		assert.True(t, p.Y >= 0 && p.Y < 600)
		assert.LessOrEqual(t, math.Abs(p.VX), maxSpeed)
		assert.LessOrEqual(t, math.Abs(p.VY), maxSpeed)
	}
}

func TestNewField_SeededIsDeterministic(t *testing.T) {
	a := NewField(10, 100, 100, rand.New(rand.NewPCG(3, 4)))
	b := NewField(10, 100, 100, rand.New(rand.NewPCG(3, 4)))
	assert.Equal(t, a.Particles(), b.Particles())
}

func TestStep_WrapsAtEdges(t *testing.T) {
	f := fixedField(
		Particle{X: 99.9, Y: 50, VX: 0.25, VY: 0},
		Particle{X: 0.1, Y: 0.1, VX: -0.25, VY: -0.25},
	)
	f.Step()

	ps := f.Particles()
	assert.InDelta(t, 0.15, ps[0].X, 1e-9)
	assert.InDelta(t, 50, ps[0].Y, 1e-9)
	assert.InDelta(t, 99.85, ps[1].X, 1e-9)
	assert.InDelta(t, 99.85, ps[1].Y, 1e-9)
}

func TestAdvance_EqualsRepeatedSteps(t *testing.T) {
	a := NewField(20, 300, 200, rand.New(rand.NewPCG(5, 6)))
	b := NewField(20, 300, 200, rand.New(rand.NewPCG(5, 6)))

	for i := 0; i < 7; i++ {
		a.Step()
	}
	b.Advance(7)

	pa, pb := a.Particles(), b.Particles()
	for i := range pa {
		assert.InDelta(t, pa[i].X, pb[i].X, 1e-9)
		assert.InDelta(t, pa[i].Y, pb[i].Y, 1e-9)
	}
}

func TestLinks_NextTwoNeighboursOnly(t *testing.T) {
	f := fixedField(
		Particle{X: 0, Y: 0},
		Particle{X: 30, Y: 40},
		Particle{X: 0, Y: 10},
		Particle{X: 0, Y: 20},
	)

	links := f.Links(100)
	require.Len(t, links, 5)

	// 0-1 is 50 apart: half the reach, half the maximum opacity.
	assert.Equal(t, 0, links[0].From)
	assert.Equal(t, 1, links[0].To)
	assert.InDelta(t, 0.15, links[0].Opacity, 1e-9)

	for _, l := range links {
		assert.LessOrEqual(t, l.To-l.From, 2, "0 and 3 are close but not within reach")
		assert.Greater(t, l.Opacity, 0.0)
		assert.LessOrEqual(t, l.Opacity, maxOpacity)
	}
}

func TestLinks_SkipsDistantPairs(t *testing.T) {
	f := fixedField(Particle{X: 0, Y: 0}, Particle{X: 99, Y: 99})
	assert.Empty(t, f.Links(DefaultLinkDistance/2))
	assert.Nil(t, f.Links(0))
}

func TestResize_FoldsParticlesInside(t *testing.T) {
	f := fixedField(Particle{X: 90, Y: 70})
	f.Resize(40, 30)

	w, h := f.Size()
	assert.Equal(t, 40.0, w)
	assert.Equal(t, 30.0, h)
	p := f.Particles()[0]
	assert.InDelta(t, 10, p.X, 1e-9)
	assert.InDelta(t, 10, p.Y, 1e-9)
}
