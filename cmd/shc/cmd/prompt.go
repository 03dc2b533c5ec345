package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// promptConfirm asks question on out and reads a yes/no answer from in.
// Anything other than y or yes, including end of input, is a no.
func promptConfirm(in *bufio.Reader, out io.Writer, question string) (bool, error) {
	answer, err := readLine(in, out, question+" [y/N] ")
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(out)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
