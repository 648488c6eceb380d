package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/certbible/certprep/internal/catalog"
	"github.com/certbible/certprep/internal/model"
	"github.com/certbible/certprep/internal/quiz"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const defaultWidth = 80

type styles struct {
	title    lipgloss.Style
	muted    lipgloss.Style
	selected lipgloss.Style
	good     lipgloss.Style
	bad      lipgloss.Style
	err      lipgloss.Style
	card     lipgloss.Style
	width    int
}

// detectStyles colors output only when f is a terminal.
func detectStyles(f *os.File) styles {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return plainStyles()
	}
	width := defaultWidth
	if w, _, err := term.GetSize(fd); err == nil && w > 20 {
		width = min(w, 100)
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0")),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A")),
		good:     lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")),
		bad:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
		err:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
		card: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Width(width - 2),
		width: width,
	}
}

func plainStyles() styles {
	s := lipgloss.NewStyle()
	return styles{title: s, muted: s, selected: s, good: s, bad: s, err: s, card: s, width: defaultWidth}
}

func printCatalog(w io.Writer, st styles, cat *catalog.Catalog) {
	for _, e := range cat.Exams {
		fmt.Fprintf(w, "%s  %s %s\n", st.title.Render(e.Code), e.Name, st.muted.Render(fmt.Sprintf("(%d questions)", e.PracticeCount)))
		ids := make([]string, len(e.Domains))
		for i, d := range e.Domains {
			ids[i] = d.ID
		}
		fmt.Fprintf(w, "  domains: %s\n", strings.Join(ids, " "))
	}
}

func printQuestion(w io.Writer, st styles, v model.SessionView) {
	q := v.Question
	header := fmt.Sprintf("Question %d of %d", v.CurrentIndex+1, v.Total)
	if v.Exam != "" {
		header += "  " + v.Exam
	}
	if q.Domain != "" {
		header += " / " + q.Domain
	}

	var b strings.Builder
	b.WriteString(st.muted.Render(header))
	b.WriteString("\n\n")
	b.WriteString(st.title.Render(q.Text))
	b.WriteString("\n")

	selected := v.Answers[v.CurrentIndex]
	for _, l := range quiz.Labels {
		line := fmt.Sprintf("%s) %s", l, q.Options[l])
		if l == selected {
			line = st.selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString("\n" + line)
	}
	b.WriteString("\n\n")
	b.WriteString(st.muted.Render(fmt.Sprintf("%d/%d answered", v.AnsweredCount, v.Total)))

	fmt.Fprintln(w, st.card.Render(b.String()))
}

func printFeedback(w io.Writer, st styles, fb model.CheckResponse) {
	switch {
	case !fb.Answered:
		fmt.Fprintln(w, st.muted.Render("Pick an answer first."))
	case fb.Correct:
		fmt.Fprintln(w, st.good.Render("Correct."))
	default:
		fmt.Fprintln(w, st.bad.Render("Incorrect."))
	}
	if fb.Explanation != "" {
		fmt.Fprintln(w, fb.Explanation)
	}
}

func printHistory(w io.Writer, st styles, results []quiz.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, st.muted.Render("No results yet. Run `certprep take --exam A1101`."))
		return
	}
	for n, i := 1, len(results)-1; i >= 0; n, i = n+1, i-1 {
		r := results[i]
		exam := r.Exam
		if r.Domain != "" {
			exam += " / " + r.Domain
		}
		score := fmt.Sprintf("%3d%%", r.RoundedScore())
		fmt.Fprintf(w, "%3d  %s  %-16s %s  %s\n",
			n,
			r.Timestamp.Local().Format("2006-01-02 15:04"),
			exam,
			scoreStyle(st, r.Score).Render(score),
			st.muted.Render(fmt.Sprintf("%d/%d", r.CorrectCount, r.TotalQuestions)),
		)
	}
}

func printReview(w io.Writer, st styles, out model.SubmitResponse) {
	r := out.Result
	fmt.Fprintf(w, "%s %s\n\n",
		st.title.Render("Score:"),
		scoreStyle(st, r.Score).Render(fmt.Sprintf("%d%% (%d/%d)", r.RoundedScore, r.CorrectCount, r.TotalQuestions)),
	)
	for _, item := range out.Review {
		mark := st.good.Render("✓")
		if !item.Correct {
			mark = st.bad.Render("✗")
		}
		selected := string(item.Selected)
		if selected == "" {
			selected = "-"
		}
		fmt.Fprintf(w, "%s %d. %s\n", mark, item.Index+1, item.Text)
		fmt.Fprintf(w, "   %s\n", st.muted.Render(fmt.Sprintf("your answer: %s  correct: %s", selected, item.CorrectAnswer)))
		if item.Explanation != "" {
			fmt.Fprintf(w, "   %s\n", item.Explanation)
		}
	}
}

func scoreStyle(st styles, score float64) lipgloss.Style {
	if score >= 70 {
		return st.good
	}
	return st.bad
}
