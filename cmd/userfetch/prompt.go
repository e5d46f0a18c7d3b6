package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoInput is returned when stdin closes before an answer is given.
var ErrNoInput = errors.New("no input provided")

// prompter asks questions on out and reads one-line answers from in.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints question and returns the trimmed answer line.
func (p *prompter) Ask(question string) (string, error) {
	fmt.Fprintln(p.out, question)

	line, err := p.in.ReadString('\n')
	line = strings.TrimSpace(line)

	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}

	if line == "" {
		return "", fmt.Errorf("%w: %s", ErrNoInput, question)
	}

	return line, nil
}
