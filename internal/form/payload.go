package form

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Payload is the typed body of a prediction request.
type Payload struct {
	Age            int     `json:"Age"`
	Sex            int     `json:"Sex"`
	ChestPainType  int     `json:"ChestPainType"`
	BP             int     `json:"BP"`
	Cholesterol    int     `json:"Cholesterol"`
	FBS            int     `json:"FBS"`
	EKG            int     `json:"EKG"`
	MaxHR          int     `json:"MaxHR"`
	ExerciseAngina int     `json:"ExerciseAngina"`
	STDepression   float64 `json:"STDepression"`
	SlopeST        int     `json:"SlopeST"`
	NumVessels     int     `json:"NumVessels"`
	Thallium       int     `json:"Thallium"`
}

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// BuildPayload coerces raw values into a Payload. Numeric text is read up to
// the first character that cannot continue a number; text with no numeric
// prefix becomes 0. Enumerated codes that do not parse fall back to the
// field's initial code.
func BuildPayload(values map[string]string) Payload {
	return Payload{
		Age:            numericInt(values["Age"]),
		Sex:            selectCode(values, "Sex"),
		ChestPainType:  selectCode(values, "ChestPainType"),
		BP:             numericInt(values["BP"]),
		Cholesterol:    numericInt(values["Cholesterol"]),
		FBS:            selectCode(values, "FBS"),
		EKG:            selectCode(values, "EKG"),
		MaxHR:          numericInt(values["MaxHR"]),
		ExerciseAngina: selectCode(values, "ExerciseAngina"),
		STDepression:   numericFloat(values["STDepression"]),
		SlopeST:        selectCode(values, "SlopeST"),
		NumVessels:     selectCode(values, "NumVessels"),
		Thallium:       selectCode(values, "Thallium"),
	}
}

func numericInt(raw string) int {
	m := intPrefix.FindString(strings.TrimSpace(raw))
	if m == "" {
		return 0
	}
	// ParseInt saturates at the int bounds on ErrRange.
	n, err := strconv.ParseInt(m, 10, 0)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return int(n)
}

func numericFloat(raw string) float64 {
	m := floatPrefix.FindString(strings.TrimSpace(raw))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func selectCode(values map[string]string, name string) int {
	if n, err := strconv.Atoi(strings.TrimSpace(values[name])); err == nil {
		return n
	}
	f, _ := Lookup(name)
	n, _ := strconv.Atoi(f.Default)
	return n
}
