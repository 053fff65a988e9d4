package gesture

// Label names a recognized hand pose.
type Label string

// Recognized labels. LabelNone covers every unlisted finger pattern.
const (
	LabelNone    Label = "NONE"
	LabelIndex   Label = "INDEX"
	LabelThumb   Label = "THUMB"
	LabelFive    Label = "FIVE"
	LabelFist    Label = "FIST"
	LabelMiddle  Label = "MIDDLE"
	LabelVictory Label = "VICTORY"
	LabelSwag    Label = "SWAG"
)

// Labels lists every label, LabelNone first.
var Labels = []Label{
	LabelNone,
	LabelIndex,
	LabelThumb,
	LabelFive,
	LabelFist,
	LabelMiddle,
	LabelVictory,
	LabelSwag,
}

// pattern pairs an exact finger vector with its label.
type pattern struct {
	states FingerStates
	label  Label
}

// patterns is checked in order; the first exact match wins.
var patterns = []pattern{
	{FingerStates{false, true, false, false, false}, LabelIndex},
	{FingerStates{true, false, false, false, false}, LabelThumb},
	{FingerStates{true, true, true, true, true}, LabelFive},
	{FingerStates{false, true, true, true, true}, LabelFist},
	{FingerStates{false, false, true, false, false}, LabelMiddle},
	{FingerStates{false, true, true, false, false}, LabelVictory},
	{FingerStates{false, true, false, false, true}, LabelSwag},
}

// Classify maps a finger vector to its label. It is defined for all 32
// vectors and returns LabelNone when no pattern matches.
func Classify(states FingerStates) Label {
	for _, p := range patterns {
		if p.states == states {
			return p.label
		}
	}
	return LabelNone
}

// Pattern returns the finger vector that classifies as label. ok is false
// for LabelNone and unknown labels.
func Pattern(label Label) (states FingerStates, ok bool) {
	for _, p := range patterns {
		if p.label == label {
			return p.states, true
		}
	}
	return states, false
}
