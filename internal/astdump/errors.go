package astdump

import "errors"

// ErrNotATranslationUnit is returned by Parse when the first non-empty
// line of input does not begin with "TranslationUnitDecl". No nodes are
// emitted in that case.
var ErrNotATranslationUnit = errors.New("astdump: input does not start with TranslationUnitDecl")
