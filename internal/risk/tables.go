package risk

// regionBox is an inclusive latitude/longitude bounding box carrying a
// building-vulnerability multiplier. Boxes are checked in table order and
// the first match wins.
type regionBox struct {
	name           string
	minLat, maxLat float64
	minLng, maxLng float64
	factor         float64
}

// Regions with strict, well-enforced seismic building codes.
var advancedCodeRegions = []regionBox{
	{"Japan", 30, 46, 129, 146, 0.7},
	{"California", 32, 42, -125, -114, 0.75},
	{"New Zealand", -47, -34, 166, 179, 0.75},
	{"Chile", -45, -17, -76, -66, 0.8},
}

// Regions with reasonable codes but older building stock.
var moderateCodeRegions = []regionBox{
	{"Italy", 36, 47, 6, 19, 1.15},
	{"Greece and western Turkey", 34, 42, 19, 30, 1.2},
	{"Mexico", 14, 25, -106, -92, 1.1},
}

// Regions with variable code enforcement and vulnerable construction.
var variableCodeRegions = []regionBox{
	{"Nepal and northern India", 26, 31, 80, 89, 1.4},
	{"Indonesia", -11, 6, 95, 141, 1.3},
	{"Philippines", 5, 20, 117, 127, 1.3},
	{"Hispaniola", 17, 20, -75, -68, 1.5},
}

// regionFactor returns the building-code multiplier for a point, trying the
// advanced, moderate, then variable tables. No match means 1.0.
func regionFactor(lat, lng float64) float64 {
	for _, table := range [][]regionBox{advancedCodeRegions, moderateCodeRegions, variableCodeRegions} {
		for _, box := range table {
			if lat >= box.minLat && lat <= box.maxLat && lng >= box.minLng && lng <= box.maxLng {
				return box.factor
			}
		}
	}
	return 1.0
}

// cityCenter is a named population hotspot. Radius is in degrees; distance
// is Euclidean in degree space, a deliberate approximation rather than a
// great-circle calculation.
type cityCenter struct {
	name     string
	lat, lng float64
	density  float64 // population-density score, 0-100
	radius   float64 // degrees
}

var populationCenters = []cityCenter{
	{"Tokyo", 35.68, 139.69, 85, 0.5},
	{"Jakarta", -6.21, 106.85, 88, 0.5},
	{"Mumbai", 19.07, 72.88, 90, 0.5},
	{"Delhi", 28.61, 77.21, 87, 0.5},
	{"Manila", 14.60, 120.98, 86, 0.4},
	{"Mexico City", 19.43, -99.13, 75, 0.5},
	{"New York", 40.71, -74.01, 80, 0.5},
	{"Los Angeles", 34.05, -118.24, 70, 0.6},
	{"San Francisco", 37.77, -122.42, 75, 0.4},
	{"Istanbul", 41.01, 28.98, 78, 0.4},
	{"Bangkok", 13.76, 100.50, 72, 0.5},
	{"Kathmandu", 27.72, 85.32, 70, 0.3},
	{"Lima", -12.05, -77.04, 74, 0.4},
	{"Santiago", -33.45, -70.67, 68, 0.4},
}
