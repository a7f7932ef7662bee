// Package harness runs the golden-file differential tests of a
// compiler-under-test.
//
// A run builds the compiler, scans the fixture directory once, then applies
// each stage (lex, parse, execute) to every fixture in sorted order:
//
//	building → lex → parse → execute → done
//	    ↘        ↘       ↘        ↘
//	                 aborted
//
// Any state can move to aborted. With the default FailFast policy the first
// failed or erroring fixture aborts the run and every remaining fixture and
// stage is skipped. This suits interactive compiler development: fix the
// first break, rerun. The CollectAll policy keeps going instead.
//
// # Fixture Format
//
// Fixtures carry their own golden values:
//
//	/*LEX
//	int main ( ) { return 6 ; }
//	*/
//	/*AST
//	(top-level
//	(function main (params) (block (return (top-expr 6)))))
//	*/
//	//RET 6
//	int main() {
//	    return 6;
//	}
//
// Text is compared after collapsing whitespace, so the compiler may format
// its output freely. Fixtures may instead keep expectations in sibling
// files (006.lex, 006.ast); see package expect.
//
// # Usage
//
//	h, err := harness.New(harness.Options{
//	    Toolchain:  &stage.Toolchain{Compiler: "./cici"},
//	    Build:      []string{"make"},
//	    FixtureDir: "tests",
//	    Sink:       report.NewText(os.Stdout, true),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	outcome, err := h.Run(ctx)
package harness
