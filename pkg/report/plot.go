package report

import (
	"fmt"

	"github.com/onosproject/onos-lib-go/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotRates saves a bar chart of the per-user rates in Mbps. The image format
// follows the file extension.
func (r *Report) PlotRates(path string) error {
	if len(r.Results) == 0 {
		return errors.NewInvalid("no users to plot")
	}

	values := make(plotter.Values, len(r.Results))
	names := make([]string, len(r.Results))
	for i, res := range r.Results {
		values[i] = res.RateBps / 1e6
		names[i] = fmt.Sprintf("u%d/%s", res.UserID, surfaceLabel(res.SurfaceID))
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Per-user rate, sum %.2f Mbps", r.SumRateMbps())
	p.X.Label.Text = "User / serving surface"
	p.Y.Label.Text = "Rate (Mbps)"

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("failed to create bar chart: %v", err)
	}
	p.Add(bars)
	p.NominalX(names...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot %s: %v", path, err)
	}
	return nil
}
