package analyzer

import (
	"fmt"
	"strings"

	"tccretro/internal/records"
)

// Routine analyzer category labels.
const (
	LabelRoutine    = "routine"
	LabelNonRoutine = "non-routine"
)

// Project groups records by project name.
type Project struct{}

func (Project) Name() string { return "project" }

func (Project) Analyze(rs []records.Record) (Result, error) {
	return aggregate("project", "Project Analysis", rs, func(r records.Record) string { return r.Project })
}

// Mode groups records by mode name.
type Mode struct{}

func (Mode) Name() string { return "mode" }

func (Mode) Analyze(rs []records.Record) (Result, error) {
	return aggregate("mode", "Mode Analysis", rs, func(r records.Record) string { return r.Mode })
}

// Routine splits records into routine and non-routine work.
type Routine struct{}

func (Routine) Name() string { return "routine" }

func (Routine) Analyze(rs []records.Record) (Result, error) {
	return aggregate("routine", "Routine Analysis", rs, func(r records.Record) string {
		if r.HasRoutine() {
			return LabelRoutine
		}
		return LabelNonRoutine
	})
}

var builtins = map[string]func() Analyzer{
	"project": func() Analyzer { return Project{} },
	"mode":    func() Analyzer { return Mode{} },
	"routine": func() Analyzer { return Routine{} },
}

// Builtin returns the reference analyzer registered under name.
func Builtin(name string) (Analyzer, error) {
	ctor, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown analyzer %q", name)
	}
	return ctor(), nil
}

// Builtins resolves names in order.
func Builtins(names []string) ([]Analyzer, error) {
	out := make([]Analyzer, 0, len(names))
	for _, name := range names {
		a, err := Builtin(name)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
