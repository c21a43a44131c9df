// Package filter narrows and reshapes the JSON printed by text2image commands.
//
// A --filter is always JMESPath. A --query is JMESPath or $(command), in which
// case the document is piped to `sh -c command` and its stdout is printed.
package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/jmespath/go-jmespath"
)

// QueryShellTimeout bounds a $(command) query
const QueryShellTimeout = 30 * time.Second

var shellPattern = regexp.MustCompile(`^\$\((.+)\)$`)

// Expr is a compiled --filter/--query pair
type Expr struct {
	filter *jmespath.JMESPath
	query  *jmespath.JMESPath
	shell  string
}

// Output is what an Expr produced. JSON is false for raw strings and shell output.
type Output struct {
	Text string
	JSON bool
}

// Compile checks both expressions up front so a typo fails before any request
// is sent. Empty expressions are skipped; a nil Expr is returned when both are empty.
func Compile(filterExpr, query string) (*Expr, error) {
	if filterExpr == "" && query == "" {
		return nil, nil
	}

	e := &Expr{}
	if filterExpr != "" {
		jp, err := jmespath.Compile(filterExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid --filter %q: %w", filterExpr, err)
		}
		e.filter = jp
	}

	if m := shellPattern.FindStringSubmatch(query); len(m) > 1 {
		e.shell = strings.TrimSpace(m[1])
		return e, nil
	}
	if query != "" {
		jp, err := jmespath.Compile(query)
		if err != nil {
			return nil, fmt.Errorf("invalid --query %q: %w", query, err)
		}
		e.query = jp
	}
	return e, nil
}

// IsShell reports whether the query hands the document to a shell command
func (e *Expr) IsShell() bool {
	return e != nil && e.shell != ""
}

// Run applies the filter then the query to v, a command result struct.
// A query yielding a single string prints it unquoted so it can be used in
// scripts (e.g. --query url).
func (e *Expr) Run(ctx context.Context, v any) (Output, error) {
	doc, err := toDocument(v)
	if err != nil {
		return Output{}, err
	}

	if e.filter != nil {
		if doc, err = e.filter.Search(doc); err != nil {
			return Output{}, fmt.Errorf("--filter: %w", err)
		}
	}

	if e.shell != "" {
		return e.runShell(ctx, doc)
	}

	if e.query != nil {
		if doc, err = e.query.Search(doc); err != nil {
			return Output{}, fmt.Errorf("--query: %w", err)
		}
		if s, ok := doc.(string); ok {
			return Output{Text: s}, nil
		}
	}

	text, err := indent(doc)
	if err != nil {
		return Output{}, err
	}
	return Output{Text: text, JSON: true}, nil
}

// runShell pipes the document as indented JSON into sh -c
func (e *Expr) runShell(ctx context.Context, doc any) (Output, error) {
	input, err := indent(doc)
	if err != nil {
		return Output{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, QueryShellTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", e.shell)
	cmd.Stdin = strings.NewReader(input + "\n")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Output{}, fmt.Errorf("query command %q timed out after %s", e.shell, QueryShellTimeout)
		}
		msg := err.Error()
		if line, _, _ := strings.Cut(strings.TrimSpace(stderr.String()), "\n"); line != "" {
			msg = line
		}
		return Output{}, fmt.Errorf("query command %q failed: %s", e.shell, msg)
	}

	return Output{Text: strings.TrimRight(stdout.String(), "\n")}, nil
}

// toDocument turns a result struct into the generic form JMESPath walks,
// keyed by its JSON field names
func toDocument(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode output: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode output: %w", err)
	}
	return doc, nil
}

func indent(doc any) (string, error) {
	if doc == nil {
		return "null", nil
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode query result: %w", err)
	}
	return string(data), nil
}
