package helpers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

type selectionInputProvider struct {
	input io.Reader
}

// NewSelectionInputProvider returns a SelectionInputProvider which reads the chosen item
// number from the provided reader.
func NewSelectionInputProvider(in io.Reader) *selectionInputProvider {
	return &selectionInputProvider{input: in}
}

// ReadInput prints the choices on os.Stderr, enumerated 1..N, and reads the selection.
// The returned value is the zero-based index of the chosen item.  A non-numeric or
// out-of-range answer is an error, there is no silent default.
func (p *selectionInputProvider) ReadInput(prompt string, choices []string) (int, error) {
	if len(choices) < 1 {
		return -1, errors.New("no choices to select from")
	}

	for i, c := range choices {
		_, _ = fmt.Fprintf(os.Stderr, "%d: %s\n", i+1, c)
	}
	_, _ = fmt.Fprintf(os.Stderr, "%s: ", prompt)

	var val string
	if _, err := fmt.Fscanln(p.input, &val); err != nil && !errors.Is(err, io.EOF) {
		return -1, err
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return -1, fmt.Errorf("invalid selection %q", val)
	}

	if n < 1 || n > len(choices) {
		return -1, fmt.Errorf("selection %d out of range", n)
	}

	return n - 1, nil
}
