package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize bounds a single identifier line.
const maxLineSize = 1 << 20

// Input is a named reader.
type Input struct {
	Name   string
	Reader io.Reader
}

// Lines reads one identifier per line from a sequence of inputs.
type Lines struct {
	inputs    []Input
	extractor Extractor
}

// NewLines returns a source over inputs.
func NewLines(x Extractor, inputs ...Input) *Lines {
	return &Lines{inputs: inputs, extractor: x}
}

// Stdin returns a source reading os.Stdin.
func Stdin(x Extractor) *Lines {
	return NewLines(x, Input{Name: "stdin", Reader: os.Stdin})
}

// Files returns a source that reads the named files in order. Files are
// opened lazily by Read.
func Files(x Extractor, paths ...string) *Lines {
	inputs := make([]Input, len(paths))
	for i, p := range paths {
		inputs[i] = Input{Name: p}
	}
	return NewLines(x, inputs...)
}

// Read implements Source. Each line is taken verbatim as the identifier,
// minus a trailing carriage return. Blank lines are skipped.
func (l *Lines) Read(ctx context.Context) (*Batch, error) {
	batch := &Batch{}
	for _, in := range l.inputs {
		if err := l.readInput(ctx, in, batch); err != nil {
			return nil, err
		}
	}
	return batch, nil
}

func (l *Lines) readInput(ctx context.Context, in Input, batch *Batch) error {
	r := in.Reader
	if r == nil {
		f, err := os.Open(in.Name)
		if err != nil {
			return NewSourceError(in.Name, "open", err)
		}
		defer f.Close()
		r = f
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		batch.add(l.extractor, line)
	}
	if err := scanner.Err(); err != nil {
		return NewSourceError(in.Name, "read", err)
	}
	return nil
}

// String implements Source.
func (l *Lines) String() string {
	names := make([]string, len(l.inputs))
	for i, in := range l.inputs {
		names[i] = in.Name
	}
	if len(names) == 1 {
		return names[0]
	}
	return fmt.Sprintf("files:%s", strings.Join(names, ","))
}
