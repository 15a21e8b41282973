package walker

import (
	"fmt"
	"strings"
)

// signatureResult is what parseSignature extracts from a
// FunctionDecl/CXXMethodDecl's attribute string.
type signatureResult struct {
	Name            string
	QualifiedName   string
	Signature       string
	trailingVirtual bool
}

// parseSignature tokenizes attrs by whitespace and locates the single
// quoted type slice: the first token beginning with ' through the last
// token ending with '. nameOverride, when non-empty, replaces the plain
// name token in both Name and QualifiedName (used for function-template
// specializations, whose qualified name embeds "templateName<args>" in
// place of the declared name).
//
// Clang's AST-dump format guarantees a quoted type on every
// function-like node; a missing one means the input is malformed in a
// way this package has no recovery for, so it panics rather than
// silently registering a bogus entity.
func parseSignature(attrs, prefix, nameOverride string) signatureResult {
	tokens := strings.Fields(attrs)

	startIdx := -1
	for i, t := range tokens {
		if strings.HasPrefix(t, "'") {
			startIdx = i
			break
		}
	}
	if startIdx <= 0 {
		panic(fmt.Sprintf("walker: no quoted signature found in attributes %q", attrs))
	}

	endIdx := -1
	for i := len(tokens) - 1; i >= startIdx; i-- {
		if strings.HasSuffix(tokens[i], "'") {
			endIdx = i
			break
		}
	}
	if endIdx == -1 {
		panic(fmt.Sprintf("walker: unterminated quoted signature in attributes %q", attrs))
	}

	quotedJoined := strings.Join(tokens[startIdx:endIdx+1], " ")
	signature := strings.TrimSuffix(strings.TrimPrefix(quotedJoined, "'"), "'")
	trailingVirtual := endIdx+1 < len(tokens) && tokens[endIdx+1] == "virtual"

	if nameOverride != "" {
		return signatureResult{
			Name:            nameOverride,
			QualifiedName:   prefix + nameOverride + " " + quotedJoined,
			Signature:       signature,
			trailingVirtual: trailingVirtual,
		}
	}

	name := tokens[startIdx-1]
	qualifiedName := prefix + strings.Join(tokens[startIdx-1:endIdx+1], " ")
	return signatureResult{
		Name:            name,
		QualifiedName:   qualifiedName,
		Signature:       signature,
		trailingVirtual: trailingVirtual,
	}
}
