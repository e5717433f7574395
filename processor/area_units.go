package processor

// Square-meter equivalents of the traditional bigha-kattha-dhur land units
// used in the Terai survey areas.
const (
	SquareMetersPerBigha  = 6772.63
	SquareMetersPerKattha = 338.63
	SquareMetersPerDhur   = 16.93
)

// Area unit systems a submission can declare.
const (
	AreaUnitBighaKatthaDhur = "bigha"
	AreaUnitRopaniAanaPaisa = "ropani"
	AreaUnitSquareMeters    = "sq_meters"
)

// Ropani-system equivalents, used by hill-side survey areas.
const (
	squareMetersPerRopani = 508.72
	squareMetersPerAana   = 31.80
	squareMetersPerPaisa  = 7.95
)

// ConvertTraditionalArea converts a three-component bigha-kattha-dhur
// measurement to square meters. Missing components are passed as zero.
// Rounding is left to display code.
func ConvertTraditionalArea(bigha, kattha, dhur float64) float64 {
	return bigha*SquareMetersPerBigha + kattha*SquareMetersPerKattha + dhur*SquareMetersPerDhur
}

// ConvertRopaniArea converts a ropani-aana-paisa measurement to square
// meters.
func ConvertRopaniArea(ropani, aana, paisa float64) float64 {
	return ropani*squareMetersPerRopani + aana*squareMetersPerAana + paisa*squareMetersPerPaisa
}

// AreaToSquareMeters converts a three-component measurement in the declared
// unit system to square meters. Unknown unit systems are treated as already
// metric, with the first component carrying the value.
func AreaToSquareMeters(unit string, a, b, c float64) float64 {
	switch unit {
	case AreaUnitBighaKatthaDhur:
		return ConvertTraditionalArea(a, b, c)
	case AreaUnitRopaniAanaPaisa:
		return ConvertRopaniArea(a, b, c)
	default:
		return a
	}
}
