// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"context"

	"github.com/google/uuid"
	"github.com/nfvri/ris-simulator/pkg/association"
	"github.com/nfvri/ris-simulator/pkg/config"
	"github.com/nfvri/ris-simulator/pkg/engine"
	"github.com/nfvri/ris-simulator/pkg/mobility"
	"github.com/nfvri/ris-simulator/pkg/model"
	"github.com/nfvri/ris-simulator/pkg/report"
	"github.com/nfvri/ris-simulator/pkg/rng"
	"github.com/nfvri/ris-simulator/pkg/scheduler"
	"github.com/nfvri/ris-simulator/pkg/signal"
	redisLib "github.com/nfvri/ris-simulator/pkg/store/redis"
	"github.com/nfvri/ris-simulator/pkg/traffic"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Config is a manager configuration
type Config struct {
	Sim           config.Config
	RedisAddr     string
	RedisUsername string
	RedisPassword string
	RedisDB       int
}

// Manager runs one simulation: Place, Channel/Associate, Schedule, Traffic, Report
type Manager struct {
	config  Config
	runID   string
	sim     *engine.Simulator
	streams *rng.PartitionedRNG
	channel signal.ChannelModel
	store   redisLib.Store

	users       []model.Node
	surfaces    []model.Surface
	baseStation model.Node
	noiseW      float64
	round       association.Round
	plan        model.SlotPlan
	rates       []model.UserRate
	sumRate     float64
	traffic     *traffic.Generator
}

// NewManager creates a new manager
func NewManager(config *Config) (*Manager, error) {
	log.Info("Creating Manager")
	if err := config.Sim.Validate(); err != nil {
		return nil, err
	}
	channel, err := NewChannelModel(config.Sim.ChannelModel)
	if err != nil {
		return nil, err
	}

	return &Manager{
		config:  *config,
		runID:   uuid.New().String(),
		sim:     engine.NewSimulator(),
		streams: rng.NewPartitionedRNG(rng.NewSimulationKey(config.Sim.Seed)),
		channel: channel,
	}, nil
}

// NewChannelModel returns the channel model registered under name
func NewChannelModel(name string) (signal.ChannelModel, error) {
	switch name {
	case "uniform", "":
		return signal.UniformChannel{}, nil
	case "rician":
		return signal.NewRicianChannel(), nil
	}
	return nil, errors.NewInvalid("unknown channel model %q", name)
}

// SetStore sets the store finished reports are persisted to
func (m *Manager) SetStore(store redisLib.Store) {
	m.store = store
}

// RunID returns the identifier of this run
func (m *Manager) RunID() string {
	return m.runID
}

// Run executes the pipeline and returns the report. Persistence failures are
// logged and do not fail the run.
func (m *Manager) Run(ctx context.Context) (*report.Report, error) {
	log.Infof("Running Manager, run id %s", m.runID)
	m.connectStore(ctx)

	m.sim.After(0, m.place)
	m.sim.After(0, m.associate)
	m.sim.After(0, m.schedule)
	m.sim.Run(0)
	log.Infof("Simulation finished at %v after %d events", m.sim.Now(), m.sim.Executed())

	rep := report.New(report.Input{
		RunID:        m.runID,
		ChannelModel: m.channel.Name(),
		Config:       m.config.Sim,
		NoisePowerW:  m.noiseW,
		Users:        m.users,
		Surfaces:     m.surfaces,
		BaseStation:  m.baseStation,
		Round:        m.round,
		Plan:         m.plan,
		Rates:        m.rates,
		SumRateBps:   m.sumRate,
		Flows:        m.traffic.Stats(),
	})

	if m.store != nil {
		if err := m.store.AddReport(ctx, m.runID, rep); err != nil {
			log.Errorf("Failed to persist report %s: %v", redisLib.ReportKey(m.runID), err)
		} else {
			log.Infof("Report persisted as %s", redisLib.ReportKey(m.runID))
		}
	}
	return rep, nil
}

func (m *Manager) connectStore(ctx context.Context) {
	if m.store != nil || m.config.RedisAddr == "" {
		return
	}
	client, err := redisLib.InitClient(ctx, m.config.RedisAddr, m.config.RedisUsername, m.config.RedisPassword, m.config.RedisDB)
	if err != nil {
		log.Warnf("Continuing without report persistence: %v", err)
		return
	}
	m.store = &redisLib.RedisStore{ReportDB: client}
}

// place puts users then the base station on the grid and surfaces in the
// uniform box, each surface from its own stream
func (m *Manager) place() {
	cfg := m.config.Sim
	grid := mobility.DefaultGrid()

	m.users = make([]model.Node, 0, cfg.NumUsers)
	for i := 0; i < cfg.NumUsers; i++ {
		m.users = append(m.users, model.Node{ID: i, Role: model.RoleUser, Position: grid.Next()})
	}
	m.baseStation = model.Node{ID: 0, Role: model.RoleBaseStation, Position: grid.Next()}

	m.surfaces = make([]model.Surface, 0, cfg.NumRis)
	for j := 0; j < cfg.NumRis; j++ {
		alloc := mobility.SurfaceBox(m.streams.ForSubsystem(rng.SubsystemSurface(j)))
		m.surfaces = append(m.surfaces, model.Surface{
			Node:   model.Node{ID: j, Role: model.RoleSurface, Position: alloc.Next()},
			Config: model.SurfaceConfig{NumElements: cfg.NumElements},
		})
	}
	log.Infof("Placed %d users, %d surfaces, base station at %v", len(m.users), len(m.surfaces), m.baseStation.Position)
}

func (m *Manager) associate() {
	cfg := m.config.Sim
	m.noiseW = signal.ThermalNoiseW(cfg.BandwidthPerRis)

	users := make([]mobility.PositionProvider, len(m.users))
	for i := range m.users {
		users[i] = m.users[i]
	}
	m.round = association.AssignBestRis(users, m.surfaces, m.channel, association.Params{
		TxPowerDbm:  cfg.TxPowerDbm,
		NoisePowerW: m.noiseW,
		Streams:     m.streams,
	})
}

func (m *Manager) schedule() {
	cfg := m.config.Sim
	strategy := scheduler.EqualTdma{}
	m.plan = strategy.PlanSlots(len(m.users), cfg.TotalDuration)
	m.rates, m.sumRate = scheduler.ComputeRates(strategy, len(m.users), m.round.Assignment, cfg.BandwidthPerRis, cfg.TotalDuration)
	log.Infof("System sum rate %.3f Mbps", m.sumRate/1e6)

	m.traffic = traffic.NewGenerator(traffic.Config{
		MaxPackets: cfg.MaxPackets,
		PacketSize: cfg.PacketSize,
		Interval:   traffic.SecondsToDuration(cfg.Interval),
	}, m.sim)
	m.traffic.Install(m.plan, m.round.Assignment)
}
