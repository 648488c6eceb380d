package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/certbible/certprep/internal/model"
	"github.com/certbible/certprep/internal/service"
)

const helpText = `a-d  select an answer     x  clear the answer
n    next question         p  previous question
g N  go to question N      k  check the current answer
s    submit the exam       q  quit without saving
?    show this help`

// player runs one session as a line-driven loop over in.
type player struct {
	sessions *service.SessionService
	learner  string
	id       string
	in       io.Reader
	out      io.Writer
	st       styles
}

func (p *player) run(ctx context.Context) error {
	view, err := p.sessions.View(ctx, p.learner, p.id)
	if err != nil {
		return err
	}
	printQuestion(p.out, p.st, view)
	fmt.Fprintln(p.out, p.st.muted.Render("Type ? for help."))

	scanner := bufio.NewScanner(p.in)
	for {
		fmt.Fprint(p.out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			// Input closed: keep the attempt out of the history.
			return p.sessions.Abandon(ctx, p.learner, p.id)
		}

		done, err := p.step(ctx, strings.TrimSpace(scanner.Text()))
		if err != nil {
			fmt.Fprintln(p.out, p.st.err.Render(err.Error()))
		}
		if done {
			return nil
		}
	}
}

// step runs one command line. done reports that the session has ended.
func (p *player) step(ctx context.Context, line string) (done bool, err error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false, p.show(ctx)
	}

	var view model.SessionView
	switch cmd := fields[0]; cmd {
	case "a", "b", "c", "d":
		view, err = p.sessions.Answer(ctx, p.learner, p.id, model.AnswerRequest{Answer: cmd})
	case "x":
		view, err = p.sessions.Answer(ctx, p.learner, p.id, model.AnswerRequest{Clear: true})
	case "n":
		view, err = p.sessions.Navigate(ctx, p.learner, p.id, model.NavigateRequest{Action: model.NavigateNext})
	case "p":
		view, err = p.sessions.Navigate(ctx, p.learner, p.id, model.NavigateRequest{Action: model.NavigatePrevious})
	case "g":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: g N")
		}
		n, convErr := strconv.Atoi(fields[1])
		if convErr != nil {
			return false, fmt.Errorf("not a question number: %s", fields[1])
		}
		idx := n - 1
		view, err = p.sessions.Navigate(ctx, p.learner, p.id, model.NavigateRequest{Action: model.NavigateGoTo, Index: &idx})
	case "k":
		fb, err := p.sessions.Check(ctx, p.learner, p.id)
		if err != nil {
			return false, err
		}
		printFeedback(p.out, p.st, fb)
		return false, nil
	case "s":
		out, err := p.sessions.Submit(ctx, p.learner, p.id)
		if err != nil {
			return false, err
		}
		printReview(p.out, p.st, out)
		return true, nil
	case "q":
		return true, p.sessions.Abandon(ctx, p.learner, p.id)
	case "?", "h", "help":
		fmt.Fprintln(p.out, helpText)
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %q, type ? for help", cmd)
	}
	if err != nil {
		return false, err
	}
	printQuestion(p.out, p.st, view)
	return false, nil
}

func (p *player) show(ctx context.Context) error {
	view, err := p.sessions.View(ctx, p.learner, p.id)
	if err != nil {
		return err
	}
	printQuestion(p.out, p.st, view)
	return nil
}
