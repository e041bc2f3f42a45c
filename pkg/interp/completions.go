package interp

import "sandboxjs/pkg/ast"

// loopCatchCompletion implements the loop half of CORE SPEC §4.3: an
// unlabeled (or matching-labeled) Break finishes the loop, an unlabeled
// (or matching-labeled) Continue is handed back to the loop's own step
// handler to resume at the next iteration.
func (i *Interpreter) loopCatchCompletion(f *frame, c Completion) (bool, error) {
	switch c.Kind {
	case Break:
		if c.Label == "" || c.Label == f.ownLabel {
			// f is the top frame here. Pop it and hand its result to the
			// parent exactly as a loop that ran out normally would.
			i.pop()
			i.lastChildResult = f.result
			i.lastChildCompletion = nil
			return true, nil
		}
	case Continue:
		if c.Label == "" || c.Label == f.ownLabel {
			f.continueRequested = true
			return true, nil
		}
	}
	return false, nil
}

// labeledCatchCompletion catches an unlabeled statement's Break that
// targets this LabeledStatement's own label. `continue label;` is caught
// one frame lower, directly by the loop the label wraps (see
// loopCatchCompletion and the ownLabel wiring in stepLabeledStatement),
// so a LabeledStatement wrapping a non-loop body only ever needs to
// handle Break.
func (i *Interpreter) labeledCatchCompletion(f *frame, n *ast.LabeledStatement, c Completion) (bool, error) {
	if c.Kind == Break && c.Label == n.Label {
		return true, nil
	}
	return false, nil
}
