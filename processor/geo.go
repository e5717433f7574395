package processor

import (
	"fmt"

	"github.com/guregu/null"
	"github.com/tidwall/gjson"
)

// ExtractGeo normalizes the raw location block of a submission: a
// [lng, lat, elevation] coordinate triple plus an accuracy scalar under
// "properties.accuracy". A missing or malformed location yields an all-null
// Geo; callers treat missing GPS as displayable data, not an error.
func ExtractGeo(location gjson.Result) Geo {
	if !location.Exists() {
		return Geo{}
	}

	coords := location.Get("geometry.coordinates")
	if !coords.Exists() {
		coords = location.Get("coordinates")
	}
	arr := coords.Array()
	if len(arr) < 2 {
		return Geo{}
	}

	lng := arr[0].Float()
	lat := arr[1].Float()

	geo := Geo{
		Point: null.StringFrom(fmt.Sprintf("POINT(%g %g)", lng, lat)),
	}
	if len(arr) >= 3 {
		geo.Altitude = null.FloatFrom(arr[2].Float())
	}
	if acc := location.Get("properties.accuracy"); acc.Exists() {
		geo.Accuracy = null.FloatFrom(acc.Float())
	}
	return geo
}
