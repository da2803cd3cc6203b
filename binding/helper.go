package binding

import (
	"maps"
	"os"
	"slices"

	"github.com/ardnew/mung"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/builtin"
	"github.com/expr-lang/expr/parser"
)

// helpers are the namespaces available to every function body. A document
// var of the same name hides a helper.
var helpers = map[string]any{
	// PATH-like list manipulation.
	"mung": map[string]any{
		"prefix": mungPrefix,
	},
}

// withHelpers returns consts extended with every helper it does not shadow.
func withHelpers(consts map[string]any) map[string]any {
	scope := maps.Clone(helpers)
	maps.Copy(scope, consts)

	return scope
}

// mungPrefix moves prefix to the front of the list held in subject, whose
// items are separated by the OS path list separator.
func mungPrefix(subject string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(subject),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

// identVisitor collects the identifiers of an expr-lang syntax tree along
// with the names it declares with let.
type identVisitor struct {
	idents   []string
	declared map[string]bool
}

// Visit implements [ast.Visitor].
func (v *identVisitor) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if !slices.Contains(v.idents, n.Value) {
			v.idents = append(v.idents, n.Value)
		}

	case *ast.VariableDeclaratorNode:
		v.declared[n.Name] = true
	}
}

// unboundNames parses body and returns, in order of first appearance, the
// identifiers that bound rejects and that are neither helpers, expr-lang
// builtins, nor declared by the body itself.
func unboundNames(body string, bound func(string) bool) ([]string, error) {
	tree, err := parser.Parse(body)
	if err != nil {
		return nil, err
	}

	v := identVisitor{declared: make(map[string]bool)}
	ast.Walk(&tree.Node, &v)

	var unbound []string

	for _, ident := range v.idents {
		_, helper := helpers[ident]
		_, fn := builtin.Index[ident]

		if !helper && !fn && !v.declared[ident] && ident != "$env" && !bound(ident) {
			unbound = append(unbound, ident)
		}
	}

	return unbound, nil
}
