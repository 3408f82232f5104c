package catalog

import (
	"fmt"
	"math"
	"strconv"

	"github.com/agentstation/peakmap/pkg/constants"
)

// Axis selects the hemisphere letters of a coordinate.
type Axis int

const (
	// Latitude uses N and S.
	Latitude Axis = iota
	// Longitude uses E and W.
	Longitude
)

// DMS renders a decimal degree value as "D° MM′ SS.sssss″ H". The magnitude
// is rounded half to even at 1e-7 degree and split into degrees, minutes
// and seconds with integer arithmetic.
func DMS(value float64, axis Axis) string {
	hemi := "N"
	switch {
	case axis == Latitude && value < 0:
		hemi = "S"
	case axis == Longitude && value < 0:
		hemi = "W"
	case axis == Longitude:
		hemi = "E"
	}

	v := int64(math.RoundToEven(math.Abs(value) * constants.DMSScale))
	deg, r1 := v/constants.DMSScale, v%constants.DMSScale
	minutes, r2 := (60*r1)/constants.DMSScale, (60*r1)%constants.DMSScale
	seconds := float64(r2) * 60 / constants.DMSScale

	return fmt.Sprintf("%d° %02d′ %08.5f″ %s", deg, minutes, seconds, hemi)
}

// Decimal renders a coordinate with constants.DecimalPlaces decimals.
func Decimal(value float64) string {
	return strconv.FormatFloat(value, 'f', constants.DecimalPlaces, 64)
}
