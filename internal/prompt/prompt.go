// Package prompt collects yes/no answers from the user.
//
// It is the only place the provisioner reads from stdin. The plan layer
// reports which questions are open; this package asks them and hands the
// answers back, so the decision logic never touches a terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/shinji-kodama/envstrap/internal/plan"
)

// Asker resolves a list of questions into answers.
type Asker interface {
	Ask(questions []plan.Question) (plan.Answers, error)
}

// LineAsker asks each question on out and reads one line per answer
// from in. Only "y" and "yes" (any case) count as yes.
type LineAsker struct {
	out     io.Writer
	scanner *bufio.Scanner
}

// NewLineAsker creates a LineAsker. The scanner is shared across questions
// so input piped ahead of time is consumed one line per question.
func NewLineAsker(in io.Reader, out io.Writer) *LineAsker {
	return &LineAsker{
		out:     out,
		scanner: bufio.NewScanner(in),
	}
}

// Ask asks every question in order. When input ends early, the remaining
// questions are answered "no".
func (a *LineAsker) Ask(questions []plan.Question) (plan.Answers, error) {
	answers := make(plan.Answers, len(questions))
	for _, q := range questions {
		yes, err := a.confirm(q.Prompt)
		if err != nil {
			return nil, fmt.Errorf("failed to read answer for %s: %w", q.ID, err)
		}
		answers[q.ID] = yes
	}
	return answers, nil
}

func (a *LineAsker) confirm(prompt string) (bool, error) {
	fmt.Fprintf(a.out, "%s [y/N] ", prompt)

	// bufio.Scanner handles both LF and CRLF line endings.
	if a.scanner.Scan() {
		answer := strings.TrimSpace(strings.ToLower(a.scanner.Text()))
		return answer == "y" || answer == "yes", nil
	}
	fmt.Fprintln(a.out)
	return false, a.scanner.Err()
}
