package quiz

// Snapshot is the serializable state of an active session.
type Snapshot struct {
	Exam         string        `json:"exam,omitempty"`
	Domain       string        `json:"domain,omitempty"`
	CurrentIndex int           `json:"current_index"`
	Answers      map[int]Label `json:"answers"`
	Questions    []Question    `json:"questions"`
}

// Snapshot captures the session so it can be restored later.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Exam:         s.exam,
		Domain:       s.domain,
		CurrentIndex: s.current,
		Answers:      cloneAnswers(s.answers),
		Questions:    CloneQuestions(s.questions),
	}
}

// Restore rebuilds an active session from a snapshot. Answers keyed outside
// the question range or carrying invalid labels are dropped.
func Restore(snap Snapshot, opts ...Option) (*Session, error) {
	s, err := Start(snap.Questions, append([]Option{WithExam(snap.Exam, snap.Domain)}, opts...)...)
	if err != nil {
		return nil, err
	}
	for i, l := range snap.Answers {
		if i < 0 || i >= len(s.questions) {
			continue
		}
		if parsed, err := ParseLabel(string(l)); err == nil {
			s.answers[i] = parsed
		}
	}
	_ = s.GoTo(snap.CurrentIndex)
	return s, nil
}
