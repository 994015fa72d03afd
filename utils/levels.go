package utils

// degreeToLevel mirrors the education data the registration frontend submits.
// An unrecognized degree yields no level; callers must flag it, never guess.
var degreeToLevel = map[string]string{
	// Undergraduate
	"BE":    "UG",
	"BTech": "UG",
	"BSc":   "UG",
	"BCA":   "UG",
	"BA":    "UG",
	"BCom":  "UG",
	"BBA":   "UG",
	"BMS":   "UG",

	// Postgraduate
	"ME":    "PG",
	"MTech": "PG",
	"MSc":   "PG",
	"MCA":   "PG",
	"MA":    "PG",
	"MCom":  "PG",
	"MBA":   "PG",
	"MSW":   "PG",

	// Doctoral
	"PhD": "PhD",
}

// InferLevel maps a degree string to its academic level. ok is false for
// unknown degrees.
func InferLevel(degree string) (level string, ok bool) {
	level, ok = degreeToLevel[degree]
	return level, ok
}
