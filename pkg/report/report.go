package report

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/nfvri/ris-simulator/pkg/association"
	"github.com/nfvri/ris-simulator/pkg/config"
	"github.com/nfvri/ris-simulator/pkg/model"
	"github.com/nfvri/ris-simulator/pkg/signal"
	"github.com/nfvri/ris-simulator/pkg/statistics"
	"github.com/nfvri/ris-simulator/pkg/traffic"
	"github.com/nfvri/ris-simulator/pkg/utils"
	log "github.com/sirupsen/logrus"
)

// Db is a dB value that survives JSON encoding when infinite
type Db float64

func (d Db) MarshalJSON() ([]byte, error) {
	f := float64(d)
	switch {
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(f)
}

func (d *Db) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*d = Db(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*d = Db(f)
	return nil
}

// Link is the SNR of one user-surface pair
type Link struct {
	UserID    int `json:"userId" yaml:"userId"`
	SurfaceID int `json:"surfaceId" yaml:"surfaceId"`
	SnrDb     Db  `json:"snrDb" yaml:"snrDb"`
}

// UserResult is the assignment and rate of one user
type UserResult struct {
	UserID    int     `json:"userId" yaml:"userId"`
	SurfaceID int     `json:"surfaceId" yaml:"surfaceId"`
	SnrDb     Db      `json:"snrDb" yaml:"snrDb"`
	Cqi       int     `json:"cqi" yaml:"cqi"`
	SlotS     float64 `json:"slotS" yaml:"slotS"`
	RateBps   float64 `json:"rateBps" yaml:"rateBps"`
}

// DirectLink is the unassisted user to base station budget
type DirectLink struct {
	UserID     int     `json:"userId" yaml:"userId"`
	DistanceM  float64 `json:"distanceM" yaml:"distanceM"`
	PathLossDb float64 `json:"pathLossDb" yaml:"pathLossDb"`
	RxPowerDbm Db      `json:"rxPowerDbm" yaml:"rxPowerDbm"`
}

// SnrStats mirrors statistics.SnrStats with infinity-safe fields
type SnrStats struct {
	Count int `json:"count" yaml:"count"`
	Mean  Db  `json:"mean" yaml:"mean"`
	Min   Db  `json:"min" yaml:"min"`
	Max   Db  `json:"max" yaml:"max"`
}

// Report is the result of one run
type Report struct {
	RunID               string              `json:"runId" yaml:"runId"`
	ChannelModel        string              `json:"channelModel" yaml:"channelModel"`
	Config              config.Config       `json:"config" yaml:"config"`
	NoisePowerW         float64             `json:"noisePowerW" yaml:"noisePowerW"`
	Users               []model.Node        `json:"users" yaml:"users"`
	Surfaces            []model.Surface     `json:"surfaces" yaml:"surfaces"`
	BaseStation         model.Node          `json:"baseStation" yaml:"baseStation"`
	Links               []Link              `json:"links" yaml:"links"`
	Results             []UserResult        `json:"results" yaml:"results"`
	DirectLinks         []DirectLink        `json:"directLinks" yaml:"directLinks"`
	SumRateBps          float64             `json:"sumRateBps" yaml:"sumRateBps"`
	MeanRateBps         float64             `json:"meanRateBps" yaml:"meanRateBps"`
	JainFairness        float64             `json:"jainFairness" yaml:"jainFairness"`
	AssignedRatio       float64             `json:"assignedRatio" yaml:"assignedRatio"`
	SurfaceLoad         []int               `json:"surfaceLoad" yaml:"surfaceLoad"`
	Snr                 SnrStats            `json:"snr" yaml:"snr"`
	CoverageRadiusM     float64             `json:"coverageRadiusM" yaml:"coverageRadiusM"`
	Flows               []traffic.FlowStats `json:"flows" yaml:"flows"`
	TotalThroughputMbps float64             `json:"totalThroughputMbps" yaml:"totalThroughputMbps"`
}

// Input gathers the stage outputs of a run
type Input struct {
	RunID        string
	ChannelModel string
	Config       config.Config
	NoisePowerW  float64
	Users        []model.Node
	Surfaces     []model.Surface
	BaseStation  model.Node
	Round        association.Round
	Plan         model.SlotPlan
	Rates        []model.UserRate
	SumRateBps   float64
	Flows        []traffic.FlowStats
}

// SumRateMbps returns the system rate in Mbps
func (r *Report) SumRateMbps() float64 {
	return r.SumRateBps / 1e6
}

// New derives the report of a run
func New(in Input) *Report {
	r := &Report{
		RunID:               in.RunID,
		ChannelModel:        in.ChannelModel,
		Config:              in.Config,
		NoisePowerW:         in.NoisePowerW,
		Users:               in.Users,
		Surfaces:            in.Surfaces,
		BaseStation:         in.BaseStation,
		Links:               []Link{},
		Results:             []UserResult{},
		DirectLinks:         []DirectLink{},
		SumRateBps:          in.SumRateBps,
		MeanRateBps:         statistics.MeanRate(in.Rates),
		JainFairness:        statistics.JainFairness(in.Rates),
		AssignedRatio:       statistics.AssignedRatio(in.Round.Assignment),
		SurfaceLoad:         statistics.SurfaceLoad(in.Round.Assignment, len(in.Surfaces)),
		Flows:               in.Flows,
		TotalThroughputMbps: traffic.TotalThroughputMbps(in.Flows),
	}

	for _, s := range in.Round.Samples {
		r.Links = append(r.Links, Link{UserID: s.UserID, SurfaceID: s.SurfaceID, SnrDb: Db(s.SnrDb)})
	}

	rates := make(map[int]float64, len(in.Rates))
	for _, rate := range in.Rates {
		rates[rate.UserID] = rate.RateBps
	}
	slots := make(map[int]float64, len(in.Plan))
	for _, slot := range in.Plan {
		slots[slot.UserID] = slot.Duration
	}
	for _, e := range in.Round.Assignment {
		r.Results = append(r.Results, UserResult{
			UserID:    e.UserID,
			SurfaceID: e.SurfaceID,
			SnrDb:     Db(e.SnrDb),
			Cqi:       signal.CqiFromSnr(e.SnrDb),
			SlotS:     slots[e.UserID],
			RateBps:   rates[e.UserID],
		})
	}

	for _, u := range in.Users {
		r.DirectLinks = append(r.DirectLinks, DirectLink{
			UserID:     u.ID,
			DistanceM:  signal.Distance(u.Position, in.BaseStation.Position),
			PathLossDb: signal.ComputePathLossDb(u.Position, in.BaseStation.Position),
			RxPowerDbm: Db(signal.ReceivedPowerDbm(in.Config.TxPowerDbm, u.Position, in.BaseStation.Position)),
		})
	}

	snr := statistics.SnrSummary(in.Round.Matrix)
	r.Snr = SnrStats{Count: snr.Count, Mean: Db(snr.Mean), Min: Db(snr.Min), Max: Db(snr.Max)}

	if in.NoisePowerW > 0 {
		// loss budget for 0 dB SNR on the direct link
		maxLoss := in.Config.TxPowerDbm - signal.MwToDbm(in.NoisePowerW*1000)
		radius, err := signal.DefaultLogDistance().CoverageRadius(maxLoss)
		if err != nil {
			log.Warnf("Failed to compute coverage radius: %v", err)
		}
		r.CoverageRadiusM = utils.RoundToDecimal(radius, 2)
	}
	return r
}
