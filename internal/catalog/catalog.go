// Package catalog describes the exams and domains learners can pick from.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed catalog.toml
var embedded []byte

var (
	ErrUnknownExam   = errors.New("unknown exam")
	ErrUnknownDomain = errors.New("unknown domain")
)

type Domain struct {
	ID    string `toml:"id" json:"id"`
	Notes string `toml:"notes" json:"notes,omitempty"`
}

type Exam struct {
	Code          string   `toml:"code" json:"code"`
	Name          string   `toml:"name" json:"name"`
	PracticeCount int      `toml:"practice_count" json:"practice_count"`
	Domains       []Domain `toml:"domains" json:"domains"`
}

// Domain returns the domain with the given ID.
func (e Exam) Domain(id string) (Domain, bool) {
	for _, d := range e.Domains {
		if d.ID == id {
			return d, true
		}
	}
	return Domain{}, false
}

type Catalog struct {
	Exams []Exam `toml:"exams" json:"exams"`
}

// Default parses the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(embedded)
}

// Parse decodes a TOML catalog and rejects duplicate exam codes.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("decode catalog: unknown keys %v", undecoded)
	}

	seen := make(map[string]bool, len(c.Exams))
	for _, e := range c.Exams {
		key := strings.ToLower(e.Code)
		if e.Code == "" || seen[key] {
			return nil, fmt.Errorf("catalog: missing or duplicate exam code %q", e.Code)
		}
		seen[key] = true
	}
	return &c, nil
}

// Lookup finds an exam by code, ignoring case.
func (c *Catalog) Lookup(code string) (Exam, bool) {
	for _, e := range c.Exams {
		if strings.EqualFold(e.Code, code) {
			return e, true
		}
	}
	return Exam{}, false
}

// Resolve validates an exam/domain pair and returns the canonical exam code.
// An empty domain means the full practice exam.
func (c *Catalog) Resolve(exam, domain string) (Exam, error) {
	e, ok := c.Lookup(exam)
	if !ok {
		return Exam{}, fmt.Errorf("%w: %q", ErrUnknownExam, exam)
	}
	if domain != "" {
		if _, ok := e.Domain(domain); !ok {
			return Exam{}, fmt.Errorf("%w: %q in %s", ErrUnknownDomain, domain, e.Code)
		}
	}
	return e, nil
}
