package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/matzehuels/cellsolve/pkg/cell"
	"github.com/matzehuels/cellsolve/pkg/constraint"
	"github.com/matzehuels/cellsolve/pkg/errors"
	"github.com/matzehuels/cellsolve/pkg/exchange"
)

// Issue is one problem found by [ValidateDocument].
type Issue struct {
	Where   string      `json:"where"`
	Expr    string      `json:"expr,omitempty"`
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
	Offset  int         `json:"offset,omitempty"`
}

func (i Issue) String() string {
	if i.Expr != "" {
		return fmt.Sprintf("%s: %s: %s", i.Where, i.Expr, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Where, i.Message)
}

// ValidateDocument checks every constraint string against the grammar and
// the document structure (refs, instances, uses) without solving anything.
// Grammar problems are all reported; structural checking stops at the first
// problem.
func ValidateDocument(ctx context.Context, doc *exchange.Document) []Issue {
	if doc == nil {
		return []Issue{{Where: "document", Code: errors.ErrCodeInvalidInput, Message: "empty document"}}
	}
	var issues []Issue
	for i := range doc.Blocks {
		issues = append(issues, grammarIssues(&doc.Blocks[i], "block "+doc.Blocks[i].Ref)...)
	}
	issues = append(issues, grammarIssues(&doc.Root, "root")...)
	if len(issues) > 0 {
		return issues
	}

	if _, err := exchange.Import(ctx, doc, structuralFinalizer{}); err != nil {
		issues = append(issues, Issue{Where: "document", Code: errors.GetCode(err), Message: errors.UserMessage(err)})
	}
	return issues
}

func grammarIssues(n *exchange.Node, where string) []Issue {
	var out []Issue
	label := n.Name
	if n.Ref != "" {
		label = n.Ref
	}
	here := where
	if label != "" {
		here = where + " > " + label
	}
	for _, k := range n.Constraints {
		kind, err := cell.ParseConstraintKind(k.Kind)
		if err != nil {
			out = append(out, Issue{Where: here, Expr: k.Expr, Code: errors.ErrCodeInvalidInput, Message: err.Error()})
			continue
		}
		if err := constraint.Validate(kind, k.Expr); err != nil {
			issue := Issue{Where: here, Expr: k.Expr, Code: errors.GetCode(err), Message: err.Error()}
			var serr *constraint.SyntaxError
			if stderrors.As(err, &serr) {
				issue.Message, issue.Offset = serr.Msg, serr.Pos
			}
			out = append(out, issue)
		}
	}
	for i := range n.Children {
		out = append(out, grammarIssues(&n.Children[i], here)...)
	}
	return out
}

// structuralFinalizer accepts every reuse request without solving, so the
// import only checks structure.
type structuralFinalizer struct{}

func (structuralFinalizer) Freeze(context.Context, *cell.Cell) error { return nil }
func (structuralFinalizer) Fix(context.Context, *cell.Cell) error    { return nil }
