package dataset

import (
	"bufio"
	"io"
	"strconv"

	"github.com/YuminosukeSato/polyreg/pkg/errors"
)

// tokenReader reads whitespace separated numbers. Line breaks carry no meaning.
type tokenReader struct {
	op      string
	scanner *bufio.Scanner
	pos     int
}

func newTokenReader(op string, r io.Reader) *tokenReader {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	return &tokenReader{op: op, scanner: s}
}

// next returns the next token, or ok == false at end of input.
func (t *tokenReader) next() (tok string, ok bool, err error) {
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return "", false, errors.Wrapf(err, "%s: read", t.op)
		}
		return "", false, nil
	}
	t.pos++
	return t.scanner.Text(), true, nil
}

func (t *tokenReader) truncated(field string) error {
	return errors.NewModelError(t.op, "missing "+field, errors.ErrTruncatedInput)
}

func (t *tokenReader) readInt(field string) (int, error) {
	v, ok, err := t.optionalInt(field)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, t.truncated(field)
	}
	return v, nil
}

func (t *tokenReader) optionalInt(field string) (int, bool, error) {
	tok, ok, err := t.next()
	if err != nil || !ok {
		return 0, false, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false, errors.NewValueError(t.op, strconv.Quote(tok)+" at token "+strconv.Itoa(t.pos)+" is not an integer ("+field+")")
	}
	return v, true, nil
}

func (t *tokenReader) readFloat(field string) (float64, error) {
	tok, ok, err := t.next()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, t.truncated(field)
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, errors.NewValueError(t.op, strconv.Quote(tok)+" at token "+strconv.Itoa(t.pos)+" is not a number ("+field+")")
	}
	return v, nil
}

func (t *tokenReader) readFloats(dst []float64, field string) error {
	for i := range dst {
		v, err := t.readFloat(field)
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}
