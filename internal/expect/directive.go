package expect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/goldrun/internal/fixture"
)

// DirectiveToken starts a return-code directive line.
const DirectiveToken = "//RET"

// ReturnCode extracts the expected exit code from the first "//RET <n>" line.
//
// A fixture without a directive yields KindNone: no execution check is
// requested. That is never the same as expecting 0.
func ReturnCode(fx *fixture.Fixture) (Expectation, error) {
	for i, line := range fx.Lines() {
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] != DirectiveToken {
			continue
		}
		if len(fields) < 2 {
			return Expectation{}, fmt.Errorf("%w: %s:%d: missing exit code", ErrMalformedDirective, fx.Path, i+1)
		}
		code, err := strconv.Atoi(fields[1])
		if err != nil {
			return Expectation{}, fmt.Errorf("%w: %s:%d: %q is not an integer", ErrMalformedDirective, fx.Path, i+1, fields[1])
		}
		return Expectation{Kind: KindExitCode, Origin: OriginDirective, Code: code}, nil
	}
	return Expectation{Kind: KindNone}, nil
}
