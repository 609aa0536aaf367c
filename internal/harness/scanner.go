package harness

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Scanner reads whitespace-separated tokens and single characters from a
// script. It implements element.Source.
type Scanner struct {
	r *bufio.Reader
}

// NewScanner creates a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r)}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// Char returns the next non-space byte.
func (s *Scanner) Char() (byte, error) {
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			return 0, err
		}
		if !isSpace(c) {
			return c, nil
		}
	}
}

// Word returns the next whitespace-delimited token.
func (s *Scanner) Word() (string, error) {
	first, err := s.Char()
	if err != nil {
		return "", err
	}
	word := []byte{first}
	for {
		c, err := s.r.ReadByte()
		if errors.Is(err, io.EOF) {
			return string(word), nil
		}
		if err != nil {
			return "", err
		}
		if isSpace(c) {
			return string(word), nil
		}
		word = append(word, c)
	}
}

// Int reads the next token as a decimal integer.
func (s *Scanner) Int() (int, error) {
	w, err := s.Word()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(w)
	if err != nil {
		return 0, fmt.Errorf("parse integer %q: %w", w, err)
	}
	return n, nil
}
