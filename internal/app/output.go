package app

import (
	"bufio"
	"io"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
)

// Output writes results as JSON lines.
type Output struct {
	w       *bufio.Writer
	closers []io.Closer
	e       jx.Encoder
	n       int
}

// NewOutput writes JSON lines to w.
func NewOutput(w io.Writer) *Output {
	return &Output{w: bufio.NewWriter(w)}
}

// CreateOutput writes gzip-compressed JSON lines to a new file at path.
func CreateOutput(path string) (*Output, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", path)
	}
	gz := pgzip.NewWriter(f)
	return &Output{
		w:       bufio.NewWriter(gz),
		closers: []io.Closer{gz, f},
	}, nil
}

// Write encodes one value as a line.
func (o *Output) Write(encode func(e *jx.Encoder)) error {
	o.e.Reset()
	encode(&o.e)
	if _, err := o.w.Write(o.e.Bytes()); err != nil {
		return errors.Wrap(err, "write")
	}
	if err := o.w.WriteByte('\n'); err != nil {
		return errors.Wrap(err, "write")
	}
	o.n++
	return nil
}

// Lines returns the number of values written.
func (o *Output) Lines() int { return o.n }

// Close flushes buffered output and closes the underlying file, if any.
func (o *Output) Close() error {
	err := o.w.Flush()
	for _, c := range o.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		return errors.Wrap(err, "close output")
	}
	return nil
}
