// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package association

import (
	"math"
	"math/rand"

	"github.com/nfvri/ris-simulator/pkg/mobility"
	"github.com/nfvri/ris-simulator/pkg/model"
	"github.com/nfvri/ris-simulator/pkg/rng"
	"github.com/nfvri/ris-simulator/pkg/signal"
	log "github.com/sirupsen/logrus"
)

// StreamSource hands out named random streams
type StreamSource interface {
	ForSubsystem(name string) *rand.Rand
}

// Params are the link budget inputs shared by every user
type Params struct {
	TxPowerDbm  float64
	NoisePowerW float64
	// Streams provides one stream per user; defaults to seed 1
	Streams StreamSource
}

// Round is the outcome of one association pass
type Round struct {
	Matrix     model.SnrMatrix
	Samples    []model.ChannelSample
	Assignment model.Assignment
}

// AssignBestRis evaluates every user-surface SNR and assigns each user to the
// surface with the strictly greatest value. Ties keep the lowest surface
// index; a user with no finite candidate stays Unassigned at -Inf.
func AssignBestRis(users []mobility.PositionProvider, surfaces []model.Surface, ch signal.ChannelModel, params Params) Round {
	if ch == nil {
		ch = signal.UniformChannel{}
	}
	streams := params.Streams
	if streams == nil {
		streams = rng.NewPartitionedRNG(rng.NewSimulationKey(1))
	}

	matrix := model.NewSnrMatrix(len(users), len(surfaces))
	for i, user := range users {
		rnd := streams.ForSubsystem(rng.SubsystemUser(i))
		for j, surface := range surfaces {
			matrix[i][j] = signal.ComputeSnrDbWith(ch, params.TxPowerDbm, user.GetPosition(), surface.GetPosition(),
				surface.Config.NumElements, params.NoisePowerW, rnd)
		}
	}

	assignment := make(model.Assignment, len(users))
	for i := range users {
		best, snr := SelectBest(matrix[i])
		assignment[i] = model.AssignmentEntry{UserID: i, SurfaceID: best, SnrDb: snr}
		if best == model.Unassigned {
			log.Warnf("User %d has no candidate surface", i)
		} else {
			log.Debugf("User %d assigned to surface %d with SNR %.3f dB", i, best, snr)
		}
	}

	return Round{
		Matrix:     matrix,
		Samples:    matrix.Samples(),
		Assignment: assignment,
	}
}

// SelectBest returns the index and value of the strictly greatest SNR.
// NaN entries never win.
func SelectBest(snrs []float64) (int, float64) {
	best := model.Unassigned
	bestSnr := math.Inf(-1)
	for j, snr := range snrs {
		if snr > bestSnr {
			best = j
			bestSnr = snr
		}
	}
	return best, bestSnr
}
