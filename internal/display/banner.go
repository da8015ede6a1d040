package display

import (
	"fmt"
	"io"

	"github.com/backmassage/ytsub/internal/term"
)

// PrintBanner writes the ASCII art banner to w, in cyan when colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Cyan)
	fmt.Fprint(w, `       _                 _
 _   _| |_ ___ _   _| |__
| | | | __/ __| | | | '_ \
| |_| | |_\__ \ |_| | |_) |
 \__, |\__|___/\__,_|_.__/
 |___/
`)
	fmt.Fprint(w, term.NC)
}
