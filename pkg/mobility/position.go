// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package mobility

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// PositionProvider is anything that can report where it is
type PositionProvider interface {
	GetPosition() r3.Vec
}

// ConstantPosition is a node that never moves
type ConstantPosition struct {
	Position r3.Vec
}

// NewConstantPosition returns a fixed position provider
func NewConstantPosition(x, y, z float64) *ConstantPosition {
	return &ConstantPosition{Position: r3.Vec{X: x, Y: y, Z: z}}
}

// GetPosition returns the fixed position
func (c *ConstantPosition) GetPosition() r3.Vec {
	return c.Position
}

// SetPosition moves the node before the run starts
func (c *ConstantPosition) SetPosition(p r3.Vec) {
	c.Position = p
}

// Distance returns the Euclidean distance between two providers
func Distance(a, b PositionProvider) float64 {
	return r3.Norm(r3.Sub(a.GetPosition(), b.GetPosition()))
}
