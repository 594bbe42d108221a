package signal

import (
	"math"
)

// CQItoSINR mapping
// 0 and 16 values included only for calculations, not valid CQI indexes
var CQItoSINRmap = map[int]float64{
	0:  -8.950,
	1:  -6.9360,
	2:  -5.1470,
	3:  -3.1800,
	4:  -1.2530,
	5:  0.7610,
	6:  2.6990,
	7:  4.6940,
	8:  6.5250,
	9:  8.5730,
	10: 10.3660,
	11: 12.2890,
	12: 14.1730,
	13: 15.8880,
	14: 17.8140,
	15: 19.8290,
	16: 21.843,
}

// CqiFromSnr returns the highest CQI in 1..15 whose SINR threshold is met,
// or 0 when the link is out of range.
func CqiFromSnr(snrDb float64) int {
	if math.IsNaN(snrDb) {
		return 0
	}
	cqi := 0
	for i := 1; i <= 15; i++ {
		if snrDb >= CQItoSINRmap[i] {
			cqi = i
		}
	}
	return cqi
}
