// Package symbols finds where code symbols are defined, for naming symbol
// marks and moving them back onto their definitions.
package symbols

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"

	"github.com/yaklabco/markrecall/pkg/fsutil"
)

// ErrUnsupported is returned for files in a language without a grammar.
var ErrUnsupported = errors.New("unsupported language")

// Kind is the sort of declaration a symbol comes from.
type Kind string

// Symbol kinds.
const (
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindType      Kind = "type"
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindModule    Kind = "module"
)

// Symbol is one definition. Line is the 1-based line of the symbol's name.
type Symbol struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
	Line int    `json:"line"`
}

// Oracle lists the symbols defined in a file.
type Oracle interface {
	Symbols(ctx context.Context, path string, content []byte) ([]Symbol, error)
}

// DetectLanguage names the language of a file from its name and content,
// lowercased the way grammars are registered ("go", "typescript", ...).
// It returns "" when nothing matches.
func DetectLanguage(path string, content []byte) string {
	if lang, safe := enry.GetLanguageByExtension(path); safe {
		return strings.ToLower(lang)
	}
	return strings.ToLower(enry.GetLanguage(filepath.Base(path), content))
}

// LoadFile reads path and returns its symbols using oracle.
func LoadFile(ctx context.Context, oracle Oracle, path string) ([]Symbol, error) {
	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load symbols: %w", err)
	}
	return oracle.Symbols(ctx, path, content)
}

// At returns the first symbol whose name sits on line.
func At(syms []Symbol, line int) (Symbol, bool) {
	for _, s := range syms {
		if s.Line == line {
			return s, true
		}
	}
	return Symbol{}, false
}
