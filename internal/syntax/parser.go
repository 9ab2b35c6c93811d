package syntax

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// ErrSyntax is returned for sources tree-sitter could only parse with errors.
var ErrSyntax = errors.New("syntax error")

// Unit is one parsed source file.
type Unit struct {
	Path   string
	Source []byte
	tree   *sitter.Tree
}

// Root returns the program node.
func (u *Unit) Root() Node {
	return wrap(u.tree.RootNode(), u)
}

// Slice returns the source text of r.
func (u *Unit) Slice(r Range) string {
	return string(u.Source[r.Start:r.End])
}

// Parser wraps tree-sitter for JavaScript parsing.
type Parser struct{}

// NewParser creates a new parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses source and returns the unit. Each call uses its own
// tree-sitter parser, so a Parser may be shared between goroutines.
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*Unit, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	unit := &Unit{Path: path, Source: source, tree: tree}
	root := unit.Root()
	if root.n.HasError() {
		if bad := firstError(root); !bad.IsNil() {
			return nil, fmt.Errorf("%s:%d:%d: %w", path, bad.StartLine(), bad.StartColumn(), ErrSyntax)
		}
		return nil, fmt.Errorf("%s: %w", path, ErrSyntax)
	}

	return unit, nil
}

func firstError(n Node) Node {
	if n.Type() == "ERROR" || n.n.IsMissing() {
		return n
	}
	for _, c := range n.Children() {
		if c.n.HasError() || c.n.IsMissing() {
			if bad := firstError(c); !bad.IsNil() {
				return bad
			}
		}
	}
	return Node{}
}
