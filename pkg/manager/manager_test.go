// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"context"
	"math"
	"testing"

	"github.com/nfvri/ris-simulator/pkg/config"
	"github.com/nfvri/ris-simulator/pkg/model"
	redisLib "github.com/nfvri/ris-simulator/pkg/store/redis"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func run(t *testing.T, cfg config.Config) *Manager {
	mgr, err := NewManager(&Config{Sim: cfg})
	require.NoError(t, err)
	return mgr
}

func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	store := &redisLib.MockedRedisStore{}
	mgr := run(t, config.Default())
	mgr.SetStore(store)

	rep, err := mgr.Run(ctx)
	require.NoError(t, err)

	require.Len(t, rep.Results, 5)
	for _, res := range rep.Results {
		assert.True(t, res.SurfaceID == model.Unassigned || (res.SurfaceID >= 0 && res.SurfaceID < 3))
	}
	assert.False(t, math.IsNaN(rep.SumRateBps))
	assert.False(t, math.IsInf(rep.SumRateBps, 0))
	assert.GreaterOrEqual(t, rep.SumRateBps, 0.0)
	assert.Len(t, rep.Links, 15)

	// grid placement, base station after the users
	assert.Equal(t, r3.Vec{X: 5, Y: 10}, rep.Users[4].Position)
	assert.Equal(t, r3.Vec{X: 10, Y: 10}, rep.BaseStation.Position)
	for _, s := range rep.Surfaces {
		assert.True(t, s.Position.X >= 0 && s.Position.X < 100)
		assert.True(t, s.Position.Z >= 0 && s.Position.Z < 10)
		assert.Equal(t, 32, s.Config.NumElements)
	}

	// 2 s slots at 10 ms gives 200 packets per user
	require.Len(t, rep.Flows, 5)
	for _, f := range rep.Flows {
		assert.Equal(t, 200, f.TxPackets)
	}

	stored, err := store.GetReport(ctx, mgr.RunID())
	require.NoError(t, err)
	assert.Equal(t, rep.SumRateBps, stored.SumRateBps)
}

func TestReproducible(t *testing.T) {
	a, err := run(t, config.Default()).Run(context.Background())
	require.NoError(t, err)
	b, err := run(t, config.Default()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a.Links, b.Links)
	assert.Equal(t, a.Surfaces, b.Surfaces)
	assert.Equal(t, a.SumRateBps, b.SumRateBps)
	assert.NotEqual(t, a.RunID, b.RunID)

	cfg := config.Default()
	cfg.Seed = 2
	c, err := run(t, cfg).Run(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a.Links, c.Links)
}

func TestNoSurfaces(t *testing.T) {
	cfg := config.Default()
	cfg.NumRis = 0
	rep, err := run(t, cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rep.Results, 5)
	for _, res := range rep.Results {
		assert.Equal(t, model.Unassigned, res.SurfaceID)
	}
	assert.Equal(t, 0.0, rep.SumRateBps)
	for _, f := range rep.Flows {
		assert.Equal(t, 0, f.RxPackets)
	}
}

func TestZeroElements(t *testing.T) {
	cfg := config.Default()
	cfg.NumElements = 0
	rep, err := run(t, cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, rep.SumRateBps)
	assert.Equal(t, 0.0, rep.AssignedRatio)
}

func TestNoUsers(t *testing.T) {
	cfg := config.Default()
	cfg.NumUsers = 0
	rep, err := run(t, cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rep.Results)
	assert.Equal(t, 0.0, rep.SumRateBps)
	assert.Equal(t, r3.Vec{}, rep.BaseStation.Position)
}

func TestRicianChannel(t *testing.T) {
	cfg := config.Default()
	cfg.ChannelModel = "rician"
	rep, err := run(t, cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rician", rep.ChannelModel)
	assert.Greater(t, rep.SumRateBps, 0.0)
}

func TestNewManagerInvalid(t *testing.T) {
	cfg := config.Default()
	cfg.TotalDuration = 0
	_, err := NewManager(&Config{Sim: cfg})
	assert.True(t, errors.IsInvalid(err))

	_, err = NewChannelModel("rayleigh")
	assert.True(t, errors.IsInvalid(err))
}
