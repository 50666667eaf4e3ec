package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// exitWord aborts the run when typed at any prompt.
const exitWord = "exit"

// ask prints question and reads one line. An empty answer yields def;
// "exit" or end of input yields ErrUserAbort.
func ask(r *bufio.Reader, w io.Writer, question, def string) (string, error) {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	_, _ = bold.Fprint(w, question)
	if def != "" {
		_, _ = dim.Fprintf(w, " [%s]", def)
	}
	_, _ = fmt.Fprint(w, ": ")

	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	answer := strings.TrimSpace(line)
	if strings.EqualFold(answer, exitWord) {
		return "", ErrUserAbort
	}
	if answer == "" {
		if errors.Is(err, io.EOF) {
			return "", ErrUserAbort
		}
		return def, nil
	}
	return answer, nil
}
