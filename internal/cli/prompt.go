package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/peterh/liner"
)

// prompter reads one answer per prompt.
type prompter interface {
	Prompt(prompt string) (string, error)
	Notice(line string)
	SetCompleter(f func(line string) []string)
	Close() error
}

// newPrompter returns a liner-backed prompter when stdin is a terminal and a
// plain line reader otherwise (pipes, files, tests).
func newPrompter(o *IO) prompter {
	if f, ok := o.In().(*os.File); ok && isTerminal(f) && liner.TerminalSupported() {
		state := liner.NewLiner()
		state.SetCtrlCAborts(true)
		state.SetTabCompletionStyle(liner.TabPrints)

		return &linerPrompter{state: state, out: o.out}
	}

	in := o.In()
	if in == nil {
		in = eofReader{}
	}

	return &linePrompter{scanner: bufio.NewScanner(in), out: o.out}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}

type linerPrompter struct {
	state *liner.State
	out   io.Writer
}

func (p *linerPrompter) Prompt(prompt string) (string, error) {
	line, err := p.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", errFormAborted
	}

	if err != nil {
		return "", err
	}

	p.state.AppendHistory(line)

	return line, nil
}

func (p *linerPrompter) Notice(line string) {
	_, _ = fmt.Fprintln(p.out, line)
}

func (p *linerPrompter) SetCompleter(f func(line string) []string) {
	if f == nil {
		p.state.SetCompleter(nil)

		return
	}

	p.state.SetCompleter(liner.Completer(f))
}

func (p *linerPrompter) Close() error {
	return p.state.Close()
}

type linePrompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (p *linePrompter) Prompt(prompt string) (string, error) {
	_, _ = io.WriteString(p.out, prompt)

	if !p.scanner.Scan() {
		_, _ = io.WriteString(p.out, "\n")

		err := p.scanner.Err()
		if err == nil {
			err = io.ErrUnexpectedEOF
		}

		return "", err
	}

	_, _ = io.WriteString(p.out, "\n")

	return p.scanner.Text(), nil
}

func (p *linePrompter) Notice(line string) {
	_, _ = fmt.Fprintln(p.out, line)
}

func (*linePrompter) SetCompleter(func(string) []string) {}

func (*linePrompter) Close() error { return nil }

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
