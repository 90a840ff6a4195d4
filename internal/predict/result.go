package predict

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

const (
	presenceLabel     = "Heart Disease PRESENCE"
	missingConfidence = "0%"
)

// Result is the prediction response body exactly as the service sent it.
type Result json.RawMessage

func (r Result) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return []byte(r), nil
}

// View reads the fields the page renders out of a Result. Every accessor is
// defensive: missing or mistyped fields fall back to empty values, and
// missing confidences to "0%".
type View struct {
	Prediction     int64
	Label          string
	HeartDisease   string
	NoHeartDisease string
	Insights       []string
}

func NewView(r Result) View {
	doc := gjson.ParseBytes(r)
	v := View{
		Prediction:     doc.Get("prediction").Int(),
		Label:          doc.Get("result").String(),
		HeartDisease:   confidence(doc, "heart disease"),
		NoHeartDisease: confidence(doc, "no heart disease"),
		Insights:       []string{},
	}
	doc.Get("clinical_insights").ForEach(func(_, item gjson.Result) bool {
		v.Insights = append(v.Insights, item.String())
		return true
	})
	return v
}

// Positive reports the binary classification flag.
func (v View) Positive() bool {
	return v.Prediction == 1
}

// Presence reports whether the label names the presence class.
func (v View) Presence() bool {
	return v.Label == presenceLabel
}

func (v View) Headline() string {
	if v.Presence() {
		return "Heart Disease Detected"
	}
	return "No Heart Disease"
}

func confidence(doc gjson.Result, outcome string) string {
	s := doc.Get("confidence_percentages").Get(gjson.Escape(outcome)).String()
	if s == "" {
		return missingConfidence
	}
	return s
}
