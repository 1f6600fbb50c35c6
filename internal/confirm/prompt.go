package confirm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultMaxAttempts is how many unrecognised answers are tolerated before the prompt declines.
const DefaultMaxAttempts = 3

// Prompter asks y/N questions before a command mutates anything.
// Prompts go to Out so that stdout can stay reserved for command output.
type Prompter struct {
	In          io.Reader
	Out         io.Writer
	MaxAttempts int
}

// NewPrompter creates a prompter that falls back to stdin and stderr when nil is passed.
func NewPrompter(in io.Reader, out io.Writer) Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}

	return Prompter{In: in, Out: out, MaxAttempts: DefaultMaxAttempts}
}

// Confirm asks for explicit user confirmation unless noConfirm is true.
// EOF, an empty answer or too many unrecognised answers all decline.
func (p Prompter) Confirm(action string, noConfirm bool) (bool, error) {
	if noConfirm {
		return true, nil
	}

	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	scanner := bufio.NewScanner(p.In)
	for range attempts {
		if _, err := fmt.Fprintf(p.Out, "%s [y/N]: ", action); err != nil {
			return false, err
		}

		if !scanner.Scan() {
			return false, scanner.Err()
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		default:
			if _, err := fmt.Fprintln(p.Out, "Please answer yes or no."); err != nil {
				return false, err
			}
		}
	}

	return false, nil
}
