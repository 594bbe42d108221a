package report

import (
	"fmt"
	"math"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector bundles the Prometheus gauges describing a run
type Collector struct {
	SumRate      prometheus.Gauge
	UserRate     *prometheus.GaugeVec
	UserSnr      *prometheus.GaugeVec
	LinkSnr      *prometheus.GaugeVec
	SurfaceLoad  *prometheus.GaugeVec
	Fairness     prometheus.Gauge
	ChannelWidth prometheus.Gauge
	FlowRx       *prometheus.GaugeVec
	FlowLost     *prometheus.GaugeVec
}

// NewCollector registers the run gauges against reg
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		SumRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ris_sum_rate_bps",
			Help: "System sum rate under equal TDMA in bits per second.",
		}),
		UserRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ris_user_rate_bps",
			Help: "Per-user rate in bits per second.",
		}, []string{"user", "surface"}),
		UserSnr: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ris_user_snr_db",
			Help: "SNR of the serving link in dB. Unassigned users are omitted.",
		}, []string{"user", "surface"}),
		LinkSnr: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ris_link_snr_db",
			Help: "SNR of every finite user-surface link in dB.",
		}, []string{"user", "surface"}),
		SurfaceLoad: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ris_surface_users",
			Help: "Number of users served by each surface.",
		}, []string{"surface"}),
		Fairness: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ris_jain_fairness",
			Help: "Jain fairness index of the per-user rates.",
		}),
		ChannelWidth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ris_channel_width_mhz",
			Help: "Configured channel width in MHz.",
		}),
		FlowRx: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ris_flow_rx_packets",
			Help: "Packets received per user flow.",
		}, []string{"user"}),
		FlowLost: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ris_flow_lost_packets",
			Help: "Packets lost per user flow.",
		}, []string{"user"}),
	}

	for _, collector := range []prometheus.Collector{
		c.SumRate, c.UserRate, c.UserSnr, c.LinkSnr, c.SurfaceLoad, c.Fairness, c.ChannelWidth, c.FlowRx, c.FlowLost,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register collector: %v", err)
		}
	}
	return c, nil
}

// Observe sets every gauge from the report
func (c *Collector) Observe(r *Report) {
	c.SumRate.Set(r.SumRateBps)
	c.Fairness.Set(r.JainFairness)
	c.ChannelWidth.Set(float64(r.Config.ChannelWidth))

	for _, res := range r.Results {
		user := strconv.Itoa(res.UserID)
		surface := surfaceLabel(res.SurfaceID)
		c.UserRate.WithLabelValues(user, surface).Set(res.RateBps)
		if !math.IsInf(float64(res.SnrDb), 0) {
			c.UserSnr.WithLabelValues(user, surface).Set(float64(res.SnrDb))
		}
	}
	for _, l := range r.Links {
		if !math.IsInf(float64(l.SnrDb), 0) {
			c.LinkSnr.WithLabelValues(strconv.Itoa(l.UserID), strconv.Itoa(l.SurfaceID)).Set(float64(l.SnrDb))
		}
	}
	for j, load := range r.SurfaceLoad {
		c.SurfaceLoad.WithLabelValues(strconv.Itoa(j)).Set(float64(load))
	}
	for _, f := range r.Flows {
		c.FlowRx.WithLabelValues(strconv.Itoa(f.UserID)).Set(float64(f.RxPackets))
		c.FlowLost.WithLabelValues(strconv.Itoa(f.UserID)).Set(float64(f.LostPackets))
	}
}

// WriteMetrics exports the report as a Prometheus textfile
func (r *Report) WriteMetrics(path string) error {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		return err
	}
	c.Observe(r)
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("failed to write metrics %s: %v", path, err)
	}
	return nil
}
