package traffic

import (
	"math"
	"sort"
	"time"

	"github.com/nfvri/ris-simulator/pkg/engine"
	"github.com/nfvri/ris-simulator/pkg/model"
	log "github.com/sirupsen/logrus"
)

// Config of the per-user constant bit rate source
type Config struct {
	MaxPackets int
	PacketSize int // bytes
	Interval   time.Duration
}

// FlowStats collects what one user sent and what reached the receiver
type FlowStats struct {
	UserID      int           `json:"userId" yaml:"userId"`
	SurfaceID   int           `json:"surfaceId" yaml:"surfaceId"`
	TxPackets   int           `json:"txPackets" yaml:"txPackets"`
	RxPackets   int           `json:"rxPackets" yaml:"rxPackets"`
	LostPackets int           `json:"lostPackets" yaml:"lostPackets"`
	TxBytes     int64         `json:"txBytes" yaml:"txBytes"`
	RxBytes     int64         `json:"rxBytes" yaml:"rxBytes"`
	FirstTx     time.Duration `json:"firstTx" yaml:"firstTx"`
	LastRx      time.Duration `json:"lastRx" yaml:"lastRx"`
}

// ThroughputMbps returns rxBytes*8 over the first-tx to last-rx span, or 0
// when the span is empty.
func (f FlowStats) ThroughputMbps() float64 {
	span := (f.LastRx - f.FirstTx).Seconds()
	if span <= 0 {
		return 0
	}
	return float64(f.RxBytes) * 8 / span / 1e6
}

// SecondsToDuration converts fractional seconds to a Duration
func SecondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// PacketsPerSlot returns min(MaxPackets, ceil(slot/Interval))
func PacketsPerSlot(cfg Config, slot time.Duration) int {
	if cfg.MaxPackets <= 0 || cfg.Interval <= 0 || slot <= 0 {
		return 0
	}
	n := int64((slot + cfg.Interval - 1) / cfg.Interval)
	if n > int64(cfg.MaxPackets) {
		return cfg.MaxPackets
	}
	return int(n)
}

// Generator schedules one packet source per user inside its slot
type Generator struct {
	cfg   Config
	clock engine.Clock
	flows map[int]*FlowStats
}

// NewGenerator returns a generator driven by clock
func NewGenerator(cfg Config, clock engine.Clock) *Generator {
	return &Generator{
		cfg:   cfg,
		clock: clock,
		flows: make(map[int]*FlowStats),
	}
}

// Install schedules the packets of every slot. Packets of unassigned users are
// sent and counted as lost.
func (g *Generator) Install(plan model.SlotPlan, assignment model.Assignment) {
	for _, slot := range plan {
		surfaceID := model.Unassigned
		if entry, err := assignment.Get(slot.UserID); err == nil {
			surfaceID = entry.SurfaceID
		}
		flow := &FlowStats{UserID: slot.UserID, SurfaceID: surfaceID, FirstTx: -1}
		g.flows[slot.UserID] = flow

		start := SecondsToDuration(slot.Start)
		count := PacketsPerSlot(g.cfg, SecondsToDuration(slot.Duration))
		log.Debugf("User %d: %d packets from %v via surface %d", slot.UserID, count, start, surfaceID)
		for k := 0; k < count; k++ {
			at := start + time.Duration(k)*g.cfg.Interval
			g.clock.After(at-g.clock.Now(), func() { g.send(flow) })
		}
	}
}

func (g *Generator) send(flow *FlowStats) {
	now := g.clock.Now()
	if flow.FirstTx < 0 {
		flow.FirstTx = now
	}
	flow.TxPackets++
	flow.TxBytes += int64(g.cfg.PacketSize)

	if flow.SurfaceID == model.Unassigned {
		flow.LostPackets++
		return
	}
	flow.RxPackets++
	flow.RxBytes += int64(g.cfg.PacketSize)
	flow.LastRx = now
}

// Stats returns the flows ordered by user ID. Flows that never sent report
// FirstTx 0.
func (g *Generator) Stats() []FlowStats {
	stats := make([]FlowStats, 0, len(g.flows))
	for _, f := range g.flows {
		s := *f
		if s.FirstTx < 0 {
			s.FirstTx = 0
		}
		stats = append(stats, s)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].UserID < stats[j].UserID })
	return stats
}

// TotalThroughputMbps sums the per-flow throughput
func TotalThroughputMbps(stats []FlowStats) float64 {
	total := 0.0
	for _, s := range stats {
		total += s.ThroughputMbps()
	}
	return total
}
