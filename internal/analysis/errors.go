package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedLanguage indicates no visitor is registered for a language identifier.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrSyntax indicates the source could not be parsed.
	ErrSyntax = errors.New("syntax error")
)

// UnsupportedLanguageError names the language identifier the dispatcher rejected.
type UnsupportedLanguageError struct {
	Language string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language: %s", e.Language)
}

// Is reports whether target is ErrUnsupportedLanguage.
func (e *UnsupportedLanguageError) Is(target error) bool {
	return target == ErrUnsupportedLanguage
}

// SyntaxError carries the parser diagnostic for malformed source.
// Line and Column are 1-based; zero means the position is unknown.
type SyntaxError struct {
	Language string
	Line     int
	Column   int
	Message  string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("syntax error in %s code: %s (line %d, column %d)", e.Language, e.Message, e.Line, e.Column)
	}
	return fmt.Sprintf("syntax error in %s code: %s", e.Language, e.Message)
}

// Is reports whether target is ErrSyntax.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}
