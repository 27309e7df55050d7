package codescan

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/remedyops/remedy/internal/types"
)

// DefaultLongFunctionLines is the line-span threshold above which a
// function body is flagged
const DefaultLongFunctionLines = 50

// parseTree parses Python source with tree-sitter. The parser is
// error-tolerant: syntactically invalid files still produce a tree,
// with error nodes marking the damage.
func parseTree(ctx context.Context, content []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return parser.ParseCtx(ctx, nil, content)
}

// syntaxErrorIssue converts a damaged parse tree into a single
// high-severity issue at the first error node's line
func syntaxErrorIssue(root *sitter.Node, file string) types.Issue {
	line := 1
	if node := firstErrorNode(root); node != nil {
		line = int(node.StartPoint().Row) + 1
	}
	return types.Issue{
		Kind:     "syntax_error",
		Severity: types.SeverityHigh,
		File:     file,
		Line:     line,
		Message:  fmt.Sprintf("Syntax error near line %d", line),
	}
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if found := firstErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

// treeIssues walks the syntax tree flagging overly long function
// bodies and catch-all exception handlers with no declared type
func treeIssues(root *sitter.Node, content []byte, file string, longFunctionLines int) []types.Issue {
	var issues []types.Issue
	walkTree(root, func(node *sitter.Node) {
		switch node.Type() {
		case "function_definition":
			span := int(node.EndPoint().Row) - int(node.StartPoint().Row)
			if span > longFunctionLines {
				issues = append(issues, types.Issue{
					Kind:     "long_function",
					Severity: types.SeverityLow,
					File:     file,
					Line:     int(node.StartPoint().Row) + 1,
					Message:  fmt.Sprintf("Function %s is %d lines long", functionName(node, content), span),
				})
			}
		case "except_clause":
			if isBareExcept(node) {
				issues = append(issues, types.Issue{
					Kind:     "bare_except",
					Severity: types.SeverityMedium,
					File:     file,
					Line:     int(node.StartPoint().Row) + 1,
					Message:  "Bare except clause - catch specific exceptions",
				})
			}
		}
	})
	return issues
}

func walkTree(node *sitter.Node, visit func(*sitter.Node)) {
	visit(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(i), visit)
	}
}

func functionName(node *sitter.Node, content []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "identifier" {
			return string(content[child.StartByte():child.EndByte()])
		}
	}
	return "(anonymous)"
}

// isBareExcept reports whether an except_clause declares no exception
// type. The clause's children are the "except" keyword, an optional
// exception expression, ":" and the handler block; no expression
// means it catches everything.
func isBareExcept(node *sitter.Node) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		switch node.Child(i).Type() {
		case "except", "except*", ":", "block", "comment":
		default:
			return false
		}
	}
	return true
}
