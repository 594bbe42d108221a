package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/nfvri/ris-simulator/pkg/model"
	"github.com/nfvri/ris-simulator/pkg/utils"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Write renders the report in the given format
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case FormatText, "":
		return r.writeText(w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to marshal report: %v", err)
		}
		return nil
	case FormatYAML:
		out, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %v", err)
		}
		_, err = w.Write(out)
		return err
	}
	return errors.NewInvalid("unknown output format %q", format)
}

func surfaceLabel(id int) string {
	return utils.If(id == model.Unassigned, "unassigned", strconv.Itoa(id))
}

func (r *Report) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Run %s (%s channel, seed %d)\n", r.RunID, r.ChannelModel, r.Config.Seed)
	fmt.Fprintf(tw, "Users %d, surfaces %d x %d elements, tx %.1f dBm, noise %.3e W\n\n",
		len(r.Users), len(r.Surfaces), r.Config.NumElements, r.Config.TxPowerDbm, r.NoisePowerW)

	fmt.Fprintln(tw, "USER\tSURFACE\tSNR (dB)")
	for _, l := range r.Links {
		fmt.Fprintf(tw, "%d\t%d\t%.3f\n", l.UserID, l.SurfaceID, float64(l.SnrDb))
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "USER\tSERVING\tSNR (dB)\tCQI\tSLOT (s)\tRATE (Mbps)")
	for _, res := range r.Results {
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%d\t%.4f\t%.3f\n", res.UserID, surfaceLabel(res.SurfaceID),
			float64(res.SnrDb), res.Cqi, res.SlotS, res.RateBps/1e6)
	}
	fmt.Fprintln(tw)

	if len(r.Flows) > 0 {
		fmt.Fprintln(tw, "USER\tTX PKTS\tRX PKTS\tLOST\tRX BYTES\tTHROUGHPUT (Mbps)")
		for _, f := range r.Flows {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%.3f\n", f.UserID, f.TxPackets, f.RxPackets, f.LostPackets, f.RxBytes, f.ThroughputMbps())
		}
		fmt.Fprintln(tw)
	}

	fmt.Fprintf(tw, "System sum rate:\t%.3f Mbps\n", r.SumRateMbps())
	fmt.Fprintf(tw, "Mean user rate:\t%.3f Mbps\n", r.MeanRateBps/1e6)
	fmt.Fprintf(tw, "Jain fairness:\t%.4f\n", r.JainFairness)
	fmt.Fprintf(tw, "Assigned users:\t%.0f%%\n", r.AssignedRatio*100)
	fmt.Fprintf(tw, "Surface load:\t%v\n", r.SurfaceLoad)
	fmt.Fprintf(tw, "Direct coverage radius:\t%.1f m\n", r.CoverageRadiusM)
	fmt.Fprintf(tw, "Flow throughput:\t%.3f Mbps\n", r.TotalThroughputMbps)
	return tw.Flush()
}
