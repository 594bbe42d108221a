package scheduler

import (
	"math"

	"github.com/nfvri/ris-simulator/pkg/model"
	"github.com/nfvri/ris-simulator/pkg/signal"
	log "github.com/sirupsen/logrus"
)

const EQUAL_TDMA = "TDMA"

// Strategy splits the transmission period among users
type Strategy interface {
	PlanSlots(numUsers int, totalDurationS float64) model.SlotPlan
	Name() string
}

// ==========================================================
// EQUAL TDMA
// ==========================================================

// EqualTdma gives every user an equal, contiguous share of the period in
// user order.
type EqualTdma struct{}

// PlanSlots returns numUsers slots of totalDurationS/numUsers, the i-th
// starting at i*slot.
func (EqualTdma) PlanSlots(numUsers int, totalDurationS float64) model.SlotPlan {
	plan := model.SlotPlan{}
	if numUsers <= 0 {
		return plan
	}
	slot := totalDurationS / float64(numUsers)
	for i := 0; i < numUsers; i++ {
		plan = append(plan, model.Slot{UserID: i, Start: float64(i) * slot, Duration: slot})
	}
	return plan
}

func (EqualTdma) Name() string {
	return EQUAL_TDMA
}

// SnrDbToLinear converts SNR in dB to linear; -Inf gives exactly 0
func SnrDbToLinear(snrDb float64) float64 {
	return signal.DbToLinear(snrDb)
}

// ShannonRate returns the Shannon capacity of a link used for share of the time
func ShannonRate(share, bandwidthHz, snrDb float64) float64 {
	return share * bandwidthHz * math.Log2(1+SnrDbToLinear(snrDb))
}

// ComputeRates applies a strategy and returns per-user rates in bps and their sum.
// Users without an assignment entry get a zero rate, and so does every user
// when the frame has no positive finite duration.
func ComputeRates(strategy Strategy, numUsers int, assignment model.Assignment, bandwidthHz, totalDurationS float64) ([]model.UserRate, float64) {
	rates := []model.UserRate{}
	sum := 0.0
	if !(totalDurationS > 0) || math.IsInf(totalDurationS, 1) {
		log.Warnf("[%s] frame duration %v is not usable, all rates are zero", strategy.Name(), totalDurationS)
		for i := 0; i < numUsers; i++ {
			rates = append(rates, model.UserRate{UserID: i})
		}
		return rates, sum
	}
	for _, slot := range strategy.PlanSlots(numUsers, totalDurationS) {
		entry, err := assignment.Get(slot.UserID)
		if err != nil {
			log.Warnf("[%s] %v", strategy.Name(), err)
			rates = append(rates, model.UserRate{UserID: slot.UserID})
			continue
		}
		rate := ShannonRate(slot.Duration/totalDurationS, bandwidthHz, entry.SnrDb)
		log.Debugf("[%s] user %d slot %.4fs snr %.3f dB rate %.1f bps", strategy.Name(), slot.UserID, slot.Duration, entry.SnrDb, rate)
		rates = append(rates, model.UserRate{UserID: slot.UserID, RateBps: rate})
		sum += rate
	}
	return rates, sum
}

// ComputeSumRate returns per-user and system rates under equal TDMA
func ComputeSumRate(numUsers int, assignment model.Assignment, bandwidthHz, totalDurationS float64) ([]model.UserRate, float64) {
	return ComputeRates(EqualTdma{}, numUsers, assignment, bandwidthHz, totalDurationS)
}
