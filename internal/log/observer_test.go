package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nao1215/pdscload/internal/model"
)

// TestSlogObserver tests that events are mirrored to the logger.
func TestSlogObserver(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var o model.Observer = NewSlogObserver(NewLogger(&buf, Options{Verbose: true}))

	o.Info("Loading item DT1/214")
	o.Error("DT1/521 missing file: x.pdf")
	o.Progress(1, 5)
	o.Complete("Done.")

	out := buf.String()
	for _, want := range []string{
		`level=INFO msg="Loading item DT1/214"`,
		`level=WARN msg="DT1/521 missing file: x.pdf"`,
		"level=DEBUG msg=progress done=1 total=5",
		"msg=Done. complete=true",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

// TestConsoleObserver tests console output off a terminal.
func TestConsoleObserver(t *testing.T) {
	t.Parallel()

	t.Run("prints errors and completions", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		o := NewConsoleObserver(&buf)
		if o.tty {
			t.Fatal("a buffer is not a terminal")
		}

		o.Info("Loading item DT1/214")
		o.Progress(1, 5)
		o.Error("DT1/521 missing file: x.pdf")
		o.Complete("Data loaded")

		expected := "[ERROR] DT1/521 missing file: x.pdf\n[OK] Data loaded\n"
		if buf.String() != expected {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("verbose prints info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		o := NewConsoleObserver(&buf, WithVerbose(true))
		o.Info("Building the index.")

		if buf.String() != "[INFO] Building the index.\n" {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("terminal progress", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		o := &ConsoleObserver{w: &buf, tty: true}
		o.Progress(1, 4)
		o.Error("oops")
		o.Progress(4, 4)

		out := buf.String()
		if !strings.Contains(out, "1/4 (25%)") || !strings.Contains(out, "4/4 (100%)\n") {
			t.Errorf("got %q", out)
		}
		if !strings.Contains(out, clearLine+ansiRed+"[ERROR] oops"+ansiReset) {
			t.Errorf("expected the progress line to be cleared before the error, got %q", out)
		}
	})
}
