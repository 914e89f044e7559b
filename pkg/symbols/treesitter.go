package symbols

import (
	"context"
	"fmt"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// grammar maps declaration node types to symbol kinds for one language.
// Every listed node carries its identifier in the "name" field.
type grammar struct {
	language *sitter.Language
	decls    map[string]Kind
}

var jsDecls = map[string]Kind{
	"function_declaration":           KindFunction,
	"generator_function_declaration": KindFunction,
	"class_declaration":              KindClass,
	"method_definition":              KindMethod,
}

var tsDecls = map[string]Kind{
	"function_declaration":           KindFunction,
	"generator_function_declaration": KindFunction,
	"class_declaration":              KindClass,
	"abstract_class_declaration":     KindClass,
	"method_definition":              KindMethod,
	"interface_declaration":          KindInterface,
	"type_alias_declaration":         KindType,
	"enum_declaration":               KindType,
	"module":                         KindModule,
}

func grammars() map[string]grammar {
	return map[string]grammar{
		"go": {
			language: golang.GetLanguage(),
			decls: map[string]Kind{
				"function_declaration": KindFunction,
				"method_declaration":   KindMethod,
				"type_spec":            KindType,
			},
		},
		"python": {
			language: python.GetLanguage(),
			decls: map[string]Kind{
				"function_definition": KindFunction,
				"class_definition":    KindClass,
			},
		},
		"ruby": {
			language: ruby.GetLanguage(),
			decls: map[string]Kind{
				"method":           KindMethod,
				"singleton_method": KindMethod,
				"class":            KindClass,
				"module":           KindModule,
			},
		},
		"javascript": {language: javascript.GetLanguage(), decls: jsDecls},
		"typescript": {language: typescript.GetLanguage(), decls: tsDecls},
		"tsx":        {language: tsx.GetLanguage(), decls: tsDecls},
	}
}

// TreeSitter is an Oracle backed by tree-sitter grammars. A fresh parser is
// created per call, so a TreeSitter is safe for concurrent use.
type TreeSitter struct {
	grammars map[string]grammar
}

// NewTreeSitter returns an oracle for Go, Python, Ruby, JavaScript,
// TypeScript and TSX.
func NewTreeSitter() *TreeSitter {
	return &TreeSitter{grammars: grammars()}
}

// Supports reports whether a grammar exists for the language of path.
func (t *TreeSitter) Supports(path string, content []byte) bool {
	_, ok := t.grammarFor(path, content)
	return ok
}

func (t *TreeSitter) grammarFor(path string, content []byte) (grammar, bool) {
	lang := DetectLanguage(path, content)
	if lang == "typescript" && filepath.Ext(path) == ".tsx" {
		lang = "tsx"
	}
	g, ok := t.grammars[lang]
	return g, ok
}

// Symbols parses content and returns its declarations in source order.
// Arrow functions and function expressions bound to a variable are reported
// under the variable name.
func (t *TreeSitter) Symbols(ctx context.Context, path string, content []byte) ([]Symbol, error) {
	g, ok := t.grammarFor(path, content)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g.language)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	var out []Symbol
	walk(tree.RootNode(), func(n *sitter.Node) {
		if kind, ok := g.decls[n.Type()]; ok {
			if sym, ok := named(n, kind, content); ok {
				out = append(out, sym)
			}
			return
		}
		if n.Type() == "variable_declarator" && isFunctionValue(n.ChildByFieldName("value")) {
			if sym, ok := named(n, KindFunction, content); ok {
				out = append(out, sym)
			}
		}
	})

	return out, nil
}

func walk(n *sitter.Node, visit func(*sitter.Node)) {
	if n == nil {
		return
	}
	visit(n)
	for i := range int(n.NamedChildCount()) {
		walk(n.NamedChild(i), visit)
	}
}

func named(n *sitter.Node, kind Kind, content []byte) (Symbol, bool) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return Symbol{}, false
	}
	text := name.Content(content)
	if text == "" {
		return Symbol{}, false
	}
	return Symbol{
		Name: text,
		Kind: kind,
		Line: int(name.StartPoint().Row) + 1,
	}, true
}

func isFunctionValue(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type() {
	case "arrow_function", "function", "function_expression", "generator_function":
		return true
	default:
		return false
	}
}
