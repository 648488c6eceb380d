package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/certbible/certprep/internal/quiz"
	"github.com/rs/zerolog"
)

const oneQuestion = `{"question-text":"Which port does SSH use?","option-a":"21","option-b":"22","option-c":"23","option-d":"25","correct answer":"B"}`

func TestFetch_RoutesByDomain(t *testing.T) {
	var gotPath, gotKey, gotCount, gotDomain string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotCount = r.URL.Query().Get("count")
		gotDomain = r.URL.Query().Get("domain")
		_, _ = w.Write([]byte(oneQuestion))
	}))
	defer srv.Close()

	c := NewClient(Config{
		QuestionURL:     srv.URL + "/questions",
		PracticeExamURL: srv.URL + "/practice",
		APIKey:          "secret",
	}, zerolog.Nop())

	qs, err := c.Fetch(context.Background(), Request{Exam: "Net09", Domain: "1.1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 1 || qs[0].CorrectAnswer != quiz.LabelB {
		t.Fatalf("questions = %+v", qs)
	}
	if gotPath != "/questions" || gotKey != "secret" || gotCount != "1" || gotDomain != "1.1" {
		t.Errorf("path=%q key=%q count=%q domain=%q", gotPath, gotKey, gotCount, gotDomain)
	}

	if _, err := c.Fetch(context.Background(), Request{Exam: "Net09"}); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/practice" || gotCount != "30" || gotDomain != "" {
		t.Errorf("practice path=%q count=%q domain=%q", gotPath, gotCount, gotDomain)
	}
}

func TestFetch_ErrorsStayDistinguishable(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusBadGateway, `{}`, ErrUnavailable},
		{"forbidden", http.StatusForbidden, `{"error":"Unauthorized"}`, ErrUnavailable},
		{"empty array", http.StatusOK, `[]`, quiz.ErrEmptyQuestionSet},
		{"missing options", http.StatusOK, `[{"question-text":"q","option-a":"a","correct answer":"A"}]`, quiz.ErrMalformedQuestion},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(Config{PracticeExamURL: srv.URL}, zerolog.Nop())
			_, err := c.Fetch(context.Background(), Request{Exam: "A1101"})
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestFetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Config{PracticeExamURL: url}, zerolog.Nop())
	_, err := c.Fetch(context.Background(), Request{Exam: "A1101"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v", err)
	}
}
