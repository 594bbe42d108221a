// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package mobility

import (
	"math/rand"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

// Allocator hands out successive initial positions
type Allocator interface {
	Next() r3.Vec
}

// LayoutType controls how a grid is filled
type LayoutType int

const (
	// RowFirst fills GridWidth columns before moving to the next row
	RowFirst LayoutType = iota
	// ColumnFirst fills GridWidth rows before moving to the next column
	ColumnFirst
)

// GridAllocator places nodes on a regular grid in the z=0 plane.
type GridAllocator struct {
	MinX      float64
	MinY      float64
	DeltaX    float64
	DeltaY    float64
	GridWidth int
	Layout    LayoutType
	next      int
}

// DefaultGrid returns the grid used for users and the base station
func DefaultGrid() *GridAllocator {
	return &GridAllocator{MinX: 0, MinY: 0, DeltaX: 5, DeltaY: 10, GridWidth: 3, Layout: RowFirst}
}

// Position returns the n-th grid position without advancing the allocator
func (g *GridAllocator) Position(n int) r3.Vec {
	width := g.GridWidth
	if width <= 0 {
		width = 1
	}
	if g.Layout == ColumnFirst {
		return r3.Vec{
			X: g.MinX + g.DeltaX*float64(n/width),
			Y: g.MinY + g.DeltaY*float64(n%width),
		}
	}
	return r3.Vec{
		X: g.MinX + g.DeltaX*float64(n%width),
		Y: g.MinY + g.DeltaY*float64(n/width),
	}
}

// Next returns the next grid position
func (g *GridAllocator) Next() r3.Vec {
	p := g.Position(g.next)
	g.next++
	return p
}

// Allocated returns how many positions were handed out
func (g *GridAllocator) Allocated() int {
	return g.next
}

// UniformAllocator draws positions uniformly inside the box [Min, Max).
type UniformAllocator struct {
	Min r3.Vec
	Max r3.Vec
	rnd *rand.Rand
}

// NewUniformAllocator returns an allocator drawing from rnd
func NewUniformAllocator(min, max r3.Vec, rnd *rand.Rand) *UniformAllocator {
	if max.X < min.X || max.Y < min.Y || max.Z < min.Z {
		log.Warnf("Uniform allocator box is inverted: min %v max %v", min, max)
	}
	return &UniformAllocator{Min: min, Max: max, rnd: rnd}
}

// SurfaceBox returns the allocator used for surfaces: x,y in [0,100), z in [0,10)
func SurfaceBox(rnd *rand.Rand) *UniformAllocator {
	return NewUniformAllocator(r3.Vec{}, r3.Vec{X: 100, Y: 100, Z: 10}, rnd)
}

// Next draws x, y, z in that order
func (u *UniformAllocator) Next() r3.Vec {
	x := u.Min.X + u.rnd.Float64()*(u.Max.X-u.Min.X)
	y := u.Min.Y + u.rnd.Float64()*(u.Max.Y-u.Min.Y)
	z := u.Min.Z + u.rnd.Float64()*(u.Max.Z-u.Min.Z)
	return r3.Vec{X: x, Y: y, Z: z}
}
