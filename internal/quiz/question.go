package quiz

import "strings"

// Label identifies one of the four answer options.
type Label string

const (
	LabelA Label = "A"
	LabelB Label = "B"
	LabelC Label = "C"
	LabelD Label = "D"
)

// Labels lists the option labels in display order.
var Labels = [4]Label{LabelA, LabelB, LabelC, LabelD}

// ParseLabel accepts a label in any case, surrounded by optional whitespace.
func ParseLabel(s string) (Label, error) {
	l := Label(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", ErrInvalidLabel
	}
	return l, nil
}

// LetterForIndex converts an option position into its label (0 -> A).
// It returns "" for positions outside the four options.
func LetterForIndex(i int) Label {
	if i < 0 || i >= len(Labels) {
		return ""
	}
	return Labels[i]
}

// Valid reports whether l is exactly one of A, B, C or D.
func (l Label) Valid() bool {
	switch l {
	case LabelA, LabelB, LabelC, LabelD:
		return true
	}
	return false
}

// Matches compares two labels case-insensitively.
func (l Label) Matches(other Label) bool {
	return l != "" && strings.EqualFold(string(l), string(other))
}

// Question is one exam item in its canonical shape.
type Question struct {
	ID            string           `json:"id"`
	Text          string           `json:"text"`
	Options       map[Label]string `json:"options"`
	CorrectAnswer Label            `json:"correct_answer"`
	Explanations  map[Label]string `json:"explanations,omitempty"`
	Domain        string           `json:"domain,omitempty"`
	SourceExam    string           `json:"source_exam,omitempty"`
}

// Option returns the text of the option with the given label.
func (q Question) Option(l Label) string {
	return q.Options[Label(strings.ToUpper(string(l)))]
}

// ExplanationFor returns the rationale stored for the given label, or "".
func (q Question) ExplanationFor(l Label) string {
	if l == "" {
		return ""
	}
	return q.Explanations[Label(strings.ToUpper(string(l)))]
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	c := q
	c.Options = cloneLabelMap(q.Options)
	c.Explanations = cloneLabelMap(q.Explanations)
	return c
}

func cloneLabelMap(m map[Label]string) map[Label]string {
	if m == nil {
		return nil
	}
	out := make(map[Label]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// CloneQuestions deep-copies a question slice.
func CloneQuestions(qs []Question) []Question {
	if qs == nil {
		return nil
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}
