package commands

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"duties/internal/service"
)

// DutyFilter is a compiled boolean expression over a duty's fields.
//
// Variables: name, status, list_id (empty when the duty has no list), id.
// Example: status != "done" && name contains "milk"
type DutyFilter struct {
	src     string
	program *vm.Program
}

func filterEnv(d service.Duty) map[string]any {
	listID := ""
	if d.ListID != nil {
		listID = *d.ListID
	}
	return map[string]any{
		"id":      d.ID,
		"name":    d.Name,
		"status":  string(d.Status),
		"list_id": listID,
	}
}

// CompileFilter compiles src. An empty src matches every duty.
func CompileFilter(src string) (*DutyFilter, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return &DutyFilter{}, nil
	}
	program, err := expr.Compile(src, expr.Env(filterEnv(service.Duty{})), expr.AsBool())
	if err != nil {
		return nil, usageErrorf("invalid filter: %v", err)
	}
	return &DutyFilter{src: src, program: program}, nil
}

// Match reports whether d satisfies the filter.
func (f *DutyFilter) Match(d service.Duty) (bool, error) {
	if f.program == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, filterEnv(d))
	if err != nil {
		return false, fmt.Errorf("filter %q: %w", f.src, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}
