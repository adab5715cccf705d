package render

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

type Style string

const (
	StyleHeader    Style = "header"
	StyleOKBlue    Style = "okblue"
	StyleOKGreen   Style = "okgreen"
	StyleWarning   Style = "warning"
	StyleFail      Style = "fail"
	StyleBold      Style = "bold"
	StyleUnderline Style = "underline"
	StyleReset     Style = "reset"
)

// Palette maps a style name to the escape sequence that starts it.
type Palette map[Style]string

var ANSI = Palette{
	StyleHeader:    "\033[95m",
	StyleOKBlue:    "\033[94m",
	StyleOKGreen:   "\033[92m",
	StyleWarning:   "\033[93m",
	StyleFail:      "\033[91m",
	StyleBold:      "\033[1m",
	StyleUnderline: "\033[4m",
	StyleReset:     "\033[0m",
}

// Plain emits no escape sequences.
var Plain = Palette{}

func (p Palette) Paint(s Style, text string) string {
	code := p[s]
	if code == "" {
		return text
	}
	return code + text + p[StyleReset]
}

// PaletteFor picks ANSI when w is a terminal and NO_COLOR is unset.
func PaletteFor(w io.Writer) Palette {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return Plain
	}
	f, ok := w.(*os.File)
	if !ok {
		return Plain
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return ANSI
	}
	return Plain
}
