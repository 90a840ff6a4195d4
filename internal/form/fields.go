package form

import "fmt"

type Kind string

const (
	KindNumeric Kind = "number"
	KindSelect  Kind = "select"
)

// Option is one (code, label) pair of an enumerated field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one input of the risk form. Min/Max/Step are only
// meaningful for numeric fields; Options only for enumerated ones.
type Field struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Kind        Kind     `json:"type"`
	Min         float64  `json:"min,omitempty"`
	Max         float64  `json:"max,omitempty"`
	Step        string   `json:"step,omitempty"`
	Float       bool     `json:"float,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Options     []Option `json:"options,omitempty"`
	Default     string   `json:"default"`
	Description string   `json:"description"`
}

func (f Field) IsSelect() bool {
	return f.Kind == KindSelect
}

// InputStep is the value of the HTML step attribute.
func (f Field) InputStep() string {
	if f.Step == "" {
		return "1"
	}
	return f.Step
}

// HasOption reports whether code is one of the field's option codes.
func (f Field) HasOption(code string) bool {
	for _, o := range f.Options {
		if o.Value == code {
			return true
		}
	}
	return false
}

// InRange reports whether v lies within the declared bounds.
func (f Field) InRange(v float64) bool {
	return v >= f.Min && v <= f.Max
}

// Describe renders the range or option set, e.g. "0-120" or "0=Female, 1=Male".
func (f Field) Describe() string {
	if !f.IsSelect() {
		if f.Float {
			return fmt.Sprintf("%g-%g (step %s)", f.Min, f.Max, f.InputStep())
		}
		return fmt.Sprintf("%g-%g", f.Min, f.Max)
	}
	out := ""
	for i, o := range f.Options {
		if i > 0 {
			out += ", "
		}
		out += o.Value + "=" + o.Label
	}
	return out
}

var catalog = []Field{
	{Name: "Age", Label: "Age", Kind: KindNumeric, Min: 0, Max: 120, Placeholder: "Enter age",
		Description: "Age of the patient in years"},
	{Name: "Sex", Label: "Gender", Kind: KindSelect, Default: "0", Options: []Option{
		{Value: "0", Label: "Female"},
		{Value: "1", Label: "Male"},
	}, Description: "0 = Female, 1 = Male"},
	{Name: "ChestPainType", Label: "Chest Pain Type", Kind: KindSelect, Default: "1", Options: []Option{
		{Value: "1", Label: "Typical Angina"},
		{Value: "2", Label: "Atypical Angina"},
		{Value: "3", Label: "Non-anginal Pain"},
		{Value: "4", Label: "Asymptomatic"},
	}, Description: "Type of chest pain (1-4)"},
	{Name: "BP", Label: "Blood Pressure (mm Hg)", Kind: KindNumeric, Min: 0, Max: 300, Placeholder: "e.g., 120",
		Description: "Blood pressure in mm Hg"},
	{Name: "Cholesterol", Label: "Cholesterol (mg/dl)", Kind: KindNumeric, Min: 0, Max: 700, Placeholder: "e.g., 200",
		Description: "Cholesterol level in mg/dL"},
	{Name: "FBS", Label: "Fasting Blood Sugar > 120 mg/dl", Kind: KindSelect, Default: "0", Options: []Option{
		{Value: "0", Label: "No (< 120)"},
		{Value: "1", Label: "Yes (> 120)"},
	}, Description: "Fasting blood sugar > 120 mg/dL: 1 = Yes, 0 = No"},
	{Name: "EKG", Label: "EKG Results", Kind: KindSelect, Default: "0", Options: []Option{
		{Value: "0", Label: "Normal"},
		{Value: "1", Label: "ST-T Abnormality"},
		{Value: "2", Label: "Left Ventricular Hypertrophy"},
	}, Description: "Resting electrocardiographic results (0-2)"},
	{Name: "MaxHR", Label: "Maximum Heart Rate", Kind: KindNumeric, Min: 0, Max: 250, Placeholder: "e.g., 150",
		Description: "Maximum heart rate achieved"},
	{Name: "ExerciseAngina", Label: "Exercise Induced Angina", Kind: KindSelect, Default: "0", Options: []Option{
		{Value: "0", Label: "No"},
		{Value: "1", Label: "Yes"},
	}, Description: "Exercise induced angina: 0 = No, 1 = Yes"},
	{Name: "STDepression", Label: "ST Depression", Kind: KindNumeric, Min: 0, Max: 10, Step: "0.1", Float: true,
		Placeholder: "e.g., 0.0", Description: "ST depression induced by exercise relative to rest"},
	{Name: "SlopeST", Label: "Slope of ST Segment", Kind: KindSelect, Default: "1", Options: []Option{
		{Value: "1", Label: "Upsloping"},
		{Value: "2", Label: "Flat"},
		{Value: "3", Label: "Downsloping"},
	}, Description: "Slope of the peak exercise ST segment: 1-3"},
	{Name: "NumVessels", Label: "Number of Major Vessels", Kind: KindSelect, Default: "0", Options: []Option{
		{Value: "0", Label: "0"},
		{Value: "1", Label: "1"},
		{Value: "2", Label: "2"},
		{Value: "3", Label: "3"},
	}, Description: "Number of major vessels colored by flourosopy: 0-3"},
	{Name: "Thallium", Label: "Thallium Scan", Kind: KindSelect, Default: "3", Options: []Option{
		{Value: "3", Label: "Normal"},
		{Value: "6", Label: "Fixed Defect"},
		{Value: "7", Label: "Reversible Defect"},
	}, Description: "Thallium stress test result: 3 = normal, 6 = fixed defect, 7 = reversible defect"},
}

var byName = func() map[string]Field {
	m := make(map[string]Field, len(catalog))
	for _, f := range catalog {
		m[f.Name] = f
	}
	return m
}()

// Fields returns the form fields in display order.
func Fields() []Field {
	out := make([]Field, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the field with the given identifier.
func Lookup(name string) (Field, bool) {
	f, ok := byName[name]
	return f, ok
}

// SelectFields returns only the enumerated fields, in display order.
func SelectFields() []Field {
	out := []Field{}
	for _, f := range catalog {
		if f.IsSelect() {
			out = append(out, f)
		}
	}
	return out
}
