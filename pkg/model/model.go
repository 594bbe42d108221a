// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"math"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// Unassigned marks a user that has no serving surface.
const Unassigned = -1

// Role of a node in the uplink scenario
type Role int

const (
	RoleUser Role = iota
	RoleSurface
	RoleBaseStation
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleSurface:
		return "surface"
	case RoleBaseStation:
		return "base-station"
	}
	return "unknown"
}

// Node is a placed simulation entity. IDs are indexes within a role.
type Node struct {
	ID       int    `json:"id" yaml:"id"`
	Role     Role   `json:"role" yaml:"role"`
	Position r3.Vec `json:"position" yaml:"position"`
}

// GetPosition returns the node position
func (n Node) GetPosition() r3.Vec {
	return n.Position
}

// SurfaceConfig describes a reconfigurable surface array.
// The per-element response is drawn by the channel model on every evaluation.
type SurfaceConfig struct {
	NumElements int `json:"numElements" yaml:"numElements"`
}

// Surface is a node acting as a reflecting relay
type Surface struct {
	Node   `yaml:",inline"`
	Config SurfaceConfig `json:"config" yaml:"config"`
}

// Validate checks the surface configuration
func (s Surface) Validate() error {
	if s.Config.NumElements < 0 {
		return errors.NewInvalid("surface %d: element count %d is negative", s.ID, s.Config.NumElements)
	}
	return nil
}

// ChannelSample is the SNR of one user-to-surface link
type ChannelSample struct {
	UserID    int     `json:"userId" yaml:"userId"`
	SurfaceID int     `json:"surfaceId" yaml:"surfaceId"`
	SnrDb     float64 `json:"snrDb" yaml:"snrDb"`
}

// SnrMatrix holds SNR in dB indexed by [user][surface]
type SnrMatrix [][]float64

// NewSnrMatrix allocates a matrix filled with -Inf
func NewSnrMatrix(numUsers, numSurfaces int) SnrMatrix {
	m := make(SnrMatrix, numUsers)
	for i := range m {
		m[i] = make([]float64, numSurfaces)
		for j := range m[i] {
			m[i][j] = math.Inf(-1)
		}
	}
	return m
}

// Samples flattens the matrix in user-major order
func (m SnrMatrix) Samples() []ChannelSample {
	samples := []ChannelSample{}
	for i, row := range m {
		for j, snr := range row {
			samples = append(samples, ChannelSample{UserID: i, SurfaceID: j, SnrDb: snr})
		}
	}
	return samples
}

// AssignmentEntry is the association decision for one user
type AssignmentEntry struct {
	UserID    int     `json:"userId" yaml:"userId"`
	SurfaceID int     `json:"surfaceId" yaml:"surfaceId"`
	SnrDb     float64 `json:"snrDb" yaml:"snrDb"`
}

// Assigned reports whether the user is served by a surface
func (e AssignmentEntry) Assigned() bool {
	return e.SurfaceID != Unassigned
}

// Assignment holds exactly one entry per user, ordered by user ID
type Assignment []AssignmentEntry

// Get returns the entry of a user
func (a Assignment) Get(userID int) (AssignmentEntry, error) {
	for _, e := range a {
		if e.UserID == userID {
			return e, nil
		}
	}
	return AssignmentEntry{}, errors.NewNotFound("user %d has no assignment entry", userID)
}

// ServedBy returns the users assigned to a surface
func (a Assignment) ServedBy(surfaceID int) []int {
	users := []int{}
	for _, e := range a {
		if e.SurfaceID == surfaceID {
			users = append(users, e.UserID)
		}
	}
	return users
}

// Slot is one TDMA transmission window, in seconds
type Slot struct {
	UserID   int     `json:"userId" yaml:"userId"`
	Start    float64 `json:"start" yaml:"start"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// End returns the slot end time
func (s Slot) End() float64 {
	return s.Start + s.Duration
}

// SlotPlan maps users to slots
type SlotPlan []Slot

// Total returns the sum of slot durations
func (p SlotPlan) Total() float64 {
	total := 0.0
	for _, s := range p {
		total += s.Duration
	}
	return total
}

// UserRate is the achieved rate of a user in bits per second
type UserRate struct {
	UserID  int     `json:"userId" yaml:"userId"`
	RateBps float64 `json:"rateBps" yaml:"rateBps"`
}
