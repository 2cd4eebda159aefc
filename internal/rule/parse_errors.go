package rule

import (
	"fmt"
	"strings"

	"github.com/azuline/rose-go/internal/roseerr"
)

// syntaxError builds a roseerr.RuleSyntax error with a caret-pointed
// diagnostic, per §4.2: "errors carry a byte offset and render as a
// caret-pointed diagnostic."
func syntaxError(text string, offset int, format string, args ...any) error {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	msg := fmt.Sprintf(format, args...)
	caret := strings.Repeat(" ", offset) + "^"
	diagnostic := fmt.Sprintf("failed to parse rule, invalid syntax:\n\n    %s\n    %s\n    %s\n", text, caret, msg)
	return roseerr.New(roseerr.RuleSyntax, "%s", diagnostic)
}
