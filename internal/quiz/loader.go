package quiz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Canonical names used when reporting missing fields.
const (
	FieldQuestionText  = "question-text"
	FieldCorrectAnswer = "correct-answer"
)

// optionField returns the canonical field name of an option ("option-a").
func optionField(l Label) string {
	return "option-" + strings.ToLower(string(l))
}

type recordField int

const (
	fieldUnknown recordField = iota
	fieldID
	fieldText
	fieldCorrect
	fieldDomain
	fieldSourceExam
	fieldOptions
	fieldExplanations
	fieldOptionA
	fieldOptionB
	fieldOptionC
	fieldOptionD
	fieldExplanationA
	fieldExplanationB
	fieldExplanationC
	fieldExplanationD
)

// providerKeys maps folded provider keys (lowercase, no separators) onto
// canonical fields. Providers disagree on hyphens, underscores, spaces and
// casing, e.g. "question-text", "question_text", "questionText" and
// "correct answer" versus "correct-answer".
var providerKeys = map[string]recordField{
	"id":            fieldID,
	"questionid":    fieldID,
	"questiontext":  fieldText,
	"question":      fieldText,
	"prompt":        fieldText,
	"text":          fieldText,
	"correctanswer": fieldCorrect,
	"correctoption": fieldCorrect,
	"correct":       fieldCorrect,
	"answer":        fieldCorrect,
	"domain":        fieldDomain,
	"sourceexam":    fieldSourceExam,
	"exam":          fieldSourceExam,
	"options":       fieldOptions,
	"explanations":  fieldExplanations,
	"optiona":       fieldOptionA,
	"optionb":       fieldOptionB,
	"optionc":       fieldOptionC,
	"optiond":       fieldOptionD,
	"explanationa":  fieldExplanationA,
	"explanationb":  fieldExplanationB,
	"explanationc":  fieldExplanationC,
	"explanationd":  fieldExplanationD,
}

func foldKey(k string) string {
	var b strings.Builder
	b.Grow(len(k))
	for _, r := range strings.ToLower(k) {
		switch r {
		case '-', '_', ' ':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Load decodes a provider response body and validates it into a question set.
func Load(data []byte) ([]Question, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyQuestionSet
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &MalformedQuestionError{Reason: "invalid JSON: " + err.Error()}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &MalformedQuestionError{Reason: "trailing data after JSON value"}
	}
	return LoadValue(v)
}

// LoadValue validates an already decoded provider payload. A bare object is
// treated as a one-question set. Any invalid record rejects the whole batch.
func LoadValue(v any) ([]Question, error) {
	var records []any
	switch t := v.(type) {
	case nil:
		return nil, ErrEmptyQuestionSet
	case []any:
		records = t
	case map[string]any:
		records = []any{t}
	case []map[string]any:
		records = make([]any, len(t))
		for i := range t {
			records[i] = t[i]
		}
	default:
		return nil, &MalformedQuestionError{Reason: fmt.Sprintf("unexpected %T payload", v)}
	}

	if len(records) == 0 {
		return nil, ErrEmptyQuestionSet
	}

	questions := make([]Question, 0, len(records))
	for i, rec := range records {
		obj, ok := rec.(map[string]any)
		if !ok {
			return nil, &MalformedQuestionError{Index: i, Reason: fmt.Sprintf("record is %T, not an object", rec)}
		}
		q, err := adaptRecord(i, obj)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// adaptRecord resolves provider keys into a canonical Question.
func adaptRecord(index int, obj map[string]any) (Question, error) {
	q := Question{
		Options:      make(map[Label]string, len(Labels)),
		Explanations: make(map[Label]string, len(Labels)),
	}
	var correct string

	// Sorted so that aliases resolve the same way on every run.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		raw := obj[k]
		field := providerKeys[foldKey(k)]
		switch field {
		case fieldOptions:
			mergeLabelled(q.Options, raw)
			continue
		case fieldExplanations:
			mergeLabelled(q.Explanations, raw)
			continue
		case fieldUnknown:
			continue
		}

		s, ok := scalarString(raw)
		if !ok {
			continue
		}
		switch field {
		case fieldID:
			setOnce(&q.ID, s)
		case fieldText:
			setOnce(&q.Text, s)
		case fieldCorrect:
			setOnce(&correct, s)
		case fieldDomain:
			setOnce(&q.Domain, s)
		case fieldSourceExam:
			setOnce(&q.SourceExam, s)
		case fieldOptionA, fieldOptionB, fieldOptionC, fieldOptionD:
			setLabelOnce(q.Options, Labels[field-fieldOptionA], s)
		case fieldExplanationA, fieldExplanationB, fieldExplanationC, fieldExplanationD:
			setLabelOnce(q.Explanations, Labels[field-fieldExplanationA], s)
		}
	}

	var missing []string
	if q.Text == "" {
		missing = append(missing, FieldQuestionText)
	}
	for _, l := range Labels {
		if q.Options[l] == "" {
			missing = append(missing, optionField(l))
		}
	}
	if correct == "" {
		missing = append(missing, FieldCorrectAnswer)
	}
	if len(missing) > 0 {
		return Question{}, &MalformedQuestionError{Index: index, Missing: missing}
	}

	label, err := ParseLabel(correct)
	if err != nil {
		return Question{}, &MalformedQuestionError{
			Index:  index,
			Reason: fmt.Sprintf("%s %q is not one of A, B, C, D", FieldCorrectAnswer, correct),
		}
	}
	q.CorrectAnswer = label

	// Fallback IDs carry a prefix so they never collide with provider IDs.
	if q.ID == "" {
		q.ID = "#" + strconv.Itoa(index)
	}
	if len(q.Explanations) == 0 {
		q.Explanations = nil
	}
	return q, nil
}

// mergeLabelled copies a nested {"A": "...", "b": "..."} object.
func mergeLabelled(dst map[Label]string, raw any) {
	m, ok := raw.(map[string]any)
	if !ok {
		return
	}
	for k, v := range m {
		l, err := ParseLabel(k)
		if err != nil {
			continue
		}
		if s, ok := scalarString(v); ok {
			setLabelOnce(dst, l, s)
		}
	}
}

func setOnce(dst *string, s string) {
	if *dst == "" {
		*dst = s
	}
}

func setLabelOnce(dst map[Label]string, l Label, s string) {
	if dst[l] == "" {
		dst[l] = s
	}
}

// scalarString renders JSON scalars as trimmed text. Blank strings count as absent.
func scalarString(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	case bool:
		s = strconv.FormatBool(t)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}
