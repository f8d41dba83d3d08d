package helpers

import (
	"strings"
	"testing"
)

func TestSelectionInputProvider_ReadInput(t *testing.T) {
	choices := []string{
		"arn:aws:iam::01234567890:role/Admin",
		"arn:aws:iam::01234567890:role/ReadOnly",
	}

	t.Run("good", func(t *testing.T) {
		p := NewSelectionInputProvider(strings.NewReader("2\n"))

		idx, err := p.ReadInput("Please choose a role", choices)
		if err != nil {
			t.Error(err)
			return
		}

		if idx != 1 {
			t.Errorf("expected index 1, got %d", idx)
		}
	})

	t.Run("first choice", func(t *testing.T) {
		p := NewSelectionInputProvider(strings.NewReader("1\n"))

		idx, err := p.ReadInput("Please choose a role", choices)
		if err != nil {
			t.Error(err)
			return
		}

		if idx != 0 {
			t.Errorf("expected index 0, got %d", idx)
		}
	})

	t.Run("non-numeric", func(t *testing.T) {
		p := NewSelectionInputProvider(strings.NewReader("x\n"))

		if _, err := p.ReadInput("Please choose a role", choices); err == nil {
			t.Error("did not receive expected error")
		}
	})

	t.Run("zero", func(t *testing.T) {
		p := NewSelectionInputProvider(strings.NewReader("0\n"))

		if _, err := p.ReadInput("Please choose a role", choices); err == nil {
			t.Error("did not receive expected error")
		}
	})

	t.Run("out of range", func(t *testing.T) {
		p := NewSelectionInputProvider(strings.NewReader("3\n"))

		if _, err := p.ReadInput("Please choose a role", choices); err == nil {
			t.Error("did not receive expected error")
		}
	})

	t.Run("no choices", func(t *testing.T) {
		p := NewSelectionInputProvider(strings.NewReader("1\n"))

		if _, err := p.ReadInput("Please choose a role", []string{}); err == nil {
			t.Error("did not receive expected error")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		p := NewSelectionInputProvider(strings.NewReader(""))

		if _, err := p.ReadInput("Please choose a role", choices); err == nil {
			t.Error("did not receive expected error")
		}
	})
}
