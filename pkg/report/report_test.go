package report

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nfvri/ris-simulator/pkg/association"
	"github.com/nfvri/ris-simulator/pkg/config"
	"github.com/nfvri/ris-simulator/pkg/model"
	"github.com/nfvri/ris-simulator/pkg/signal"
	"github.com/nfvri/ris-simulator/pkg/traffic"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v2"
)

func sampleReport() *Report {
	matrix := model.SnrMatrix{
		{12.5, 3},
		{math.Inf(-1), math.Inf(-1)},
	}
	round := association.Round{
		Matrix:  matrix,
		Samples: matrix.Samples(),
		Assignment: model.Assignment{
			{UserID: 0, SurfaceID: 0, SnrDb: 12.5},
			{UserID: 1, SurfaceID: model.Unassigned, SnrDb: math.Inf(-1)},
		},
	}
	return New(Input{
		RunID:        "run-1",
		ChannelModel: "uniform",
		Config:       config.Default(),
		NoisePowerW:  signal.ThermalNoiseW(5e6),
		Users: []model.Node{
			{ID: 0, Role: model.RoleUser, Position: r3.Vec{X: 0}},
			{ID: 1, Role: model.RoleUser, Position: r3.Vec{X: 10, Y: 10}},
		},
		Surfaces: []model.Surface{
			{Node: model.Node{ID: 0, Role: model.RoleSurface, Position: r3.Vec{X: 50, Y: 50, Z: 5}}, Config: model.SurfaceConfig{NumElements: 32}},
			{Node: model.Node{ID: 1, Role: model.RoleSurface, Position: r3.Vec{X: 20, Y: 70, Z: 2}}, Config: model.SurfaceConfig{NumElements: 32}},
		},
		BaseStation: model.Node{ID: 0, Role: model.RoleBaseStation, Position: r3.Vec{X: 10, Y: 10}},
		Round:       round,
		Plan:        model.SlotPlan{{UserID: 0, Start: 0, Duration: 5}, {UserID: 1, Start: 5, Duration: 5}},
		Rates:       []model.UserRate{{UserID: 0, RateBps: 10e6}, {UserID: 1, RateBps: 0}},
		SumRateBps:  10e6,
		Flows: []traffic.FlowStats{
			{UserID: 0, SurfaceID: 0, TxPackets: 2, RxPackets: 2, RxBytes: 2048, FirstTx: 0, LastRx: time.Second},
			{UserID: 1, SurfaceID: model.Unassigned, TxPackets: 2, LostPackets: 2},
		},
	})
}

func TestNew(t *testing.T) {
	r := sampleReport()
	require.Len(t, r.Results, 2)
	assert.Equal(t, 4, len(r.Links))
	assert.Equal(t, signal.CqiFromSnr(12.5), r.Results[0].Cqi)
	assert.Equal(t, 0, r.Results[1].Cqi)
	assert.Equal(t, 5.0, r.Results[1].SlotS)
	assert.Equal(t, 10.0, r.SumRateMbps())
	assert.Equal(t, []int{1, 0}, r.SurfaceLoad)
	assert.Equal(t, 0.5, r.AssignedRatio)
	assert.Equal(t, 2, r.Snr.Count)
	assert.InDelta(t, 2048*8/1e6, r.TotalThroughputMbps, 1e-12)

	// user 1 sits on the base station
	assert.Equal(t, math.MaxFloat64, r.DirectLinks[1].PathLossDb)
	assert.True(t, math.IsInf(float64(r.DirectLinks[1].RxPowerDbm), -1))
	assert.InDelta(t, 20-(40+27*math.Log10(math.Sqrt(200))), float64(r.DirectLinks[0].RxPowerDbm), 1e-9)

	expected := signal.DefaultLogDistance().CoverageRadiusClosedForm(20 - signal.MwToDbm(signal.ThermalNoiseW(5e6)*1000))
	assert.InDelta(t, expected, r.CoverageRadiusM, 1e-3*expected)
}

func TestDbJSON(t *testing.T) {
	tests := []struct {
		in   Db
		want string
	}{
		{Db(math.Inf(-1)), `"-Inf"`},
		{Db(math.Inf(1)), `"+Inf"`},
		{Db(3.5), `3.5`},
	}
	for _, tt := range tests {
		out, err := json.Marshal(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(out))

		var back Db
		require.NoError(t, json.Unmarshal(out, &back))
		assert.Equal(t, tt.in, back)
	}

	out, err := json.Marshal(Db(math.NaN()))
	require.NoError(t, err)
	var nan Db
	require.NoError(t, json.Unmarshal(out, &nan))
	assert.True(t, math.IsNaN(float64(nan)))

	assert.Error(t, json.Unmarshal([]byte(`"loud"`), &nan))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().Write(&buf, FormatJSON))

	var back Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "run-1", back.RunID)
	assert.True(t, math.IsInf(float64(back.Results[1].SnrDb), -1))
	assert.Equal(t, model.Unassigned, back.Results[1].SurfaceID)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().Write(&buf, FormatYAML))
	assert.Contains(t, buf.String(), "-.inf")

	var back map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "run-1", back["runId"])

	// surface node fields sit next to config, as in the JSON output
	surfaces, ok := back["surfaces"].([]interface{})
	require.True(t, ok)
	require.Len(t, surfaces, 2)
	surface, ok := surfaces[1].(map[interface{}]interface{})
	require.True(t, ok)
	assert.Equal(t, 1, surface["id"])
	assert.Contains(t, surface, "position")
	assert.Contains(t, surface, "config")
	assert.NotContains(t, surface, "node")
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().Write(&buf, ""))
	out := buf.String()
	assert.Contains(t, out, "unassigned")
	assert.Contains(t, out, "System sum rate:")
	assert.Contains(t, out, "10.000 Mbps")
	assert.Equal(t, 1, strings.Count(out, "Run run-1"))
}

func TestWriteUnknownFormat(t *testing.T) {
	err := sampleReport().Write(&bytes.Buffer{}, "xml")
	assert.True(t, errors.IsInvalid(err))
}

func TestPlotRates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.png")
	require.NoError(t, sampleReport().PlotRates(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	empty := &Report{}
	assert.True(t, errors.IsInvalid(empty.PlotRates(path)))
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	c.Observe(sampleReport())

	assert.Equal(t, 10e6, testutil.ToFloat64(c.SumRate))
	assert.Equal(t, 12.5, testutil.ToFloat64(c.UserSnr.WithLabelValues("0", "0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SurfaceLoad.WithLabelValues("0")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.FlowLost.WithLabelValues("1")))
	assert.Equal(t, 20.0, testutil.ToFloat64(c.ChannelWidth))
	// -Inf links are not exported
	assert.Equal(t, 2, testutil.CollectAndCount(c.LinkSnr))

	_, err = NewCollector(reg)
	assert.Error(t, err)
}

func TestWriteMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ris.prom")
	require.NoError(t, sampleReport().WriteMetrics(path))
	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(out), "ris_sum_rate_bps 1e+07")
	assert.Contains(t, string(out), `ris_user_rate_bps{surface="unassigned",user="1"} 0`)
}
