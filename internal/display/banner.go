package display

import (
	"fmt"
	"os"

	"github.com/backmassage/upscayv/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner() {
	if term.Magenta != "" {
		fmt.Fprint(os.Stdout, term.Magenta)
	}
	fmt.Fprint(os.Stdout, ` _   _      ____                  __     __
| | | |_ __/ ___|  ___ __ _ _   _\ \   / /
| | | | '_ \___ \ / __/ _`+"`"+` | | | |\ \ / /
| |_| | |_) |__) | (_| (_| | |_| | \ V /
 \___/| .__/____/ \___\__,_|\__, |  \_/
      |_|                   |___/
`)
	if term.Magenta != "" {
		fmt.Fprintln(os.Stdout, term.NC)
	}
}
