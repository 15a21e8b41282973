// Package walker implements the semantic pass that turns one
// translation unit's parsed AST forest into rows in a call-graph store:
// scope tracking (namespace/class prefixes), per-TU identity resolution
// for redeclarations, and a forward-reference queue for calls whose
// callee appears later in the same TU.
package walker

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/clangcg/clangcg/internal/astdump"
	"github.com/clangcg/clangcg/internal/srcpos"
	"github.com/clangcg/clangcg/internal/store"
)

// Walker carries the per-TU state needed to resolve a forest of
// astdump.Node into store rows. A Walker is reused across translation
// units; Walk resets the per-TU maps at the start of each call.
type Walker struct {
	store             *store.Store
	ignoredNamespaces map[string]struct{}

	tuPath   string
	tuFileID int64

	identity      map[uint64]identityEntry
	pending       map[uint64][]pendingCall
	knownClasses  map[string]int64
	headerFileIDs map[string]int64
}

// New creates a Walker writing into st. ignoredNamespaces names fully
// qualified namespaces (without a trailing "::") whose subtrees are
// skipped entirely.
func New(st *store.Store, ignoredNamespaces []string) *Walker {
	ign := make(map[string]struct{}, len(ignoredNamespaces))
	for _, n := range ignoredNamespaces {
		ign[n] = struct{}{}
	}
	return &Walker{store: st, ignoredNamespaces: ign}
}

// scope is the lexical context threaded through recursive descent: the
// current name prefix, the innermost enclosing class (if any), and,
// once inside a function body, the enclosing Decl/Impl's identity and
// the range of whichever CallExpr/CXXMemberCallExpr currently encloses
// the node being visited.
type scope struct {
	prefix string

	hasClass  bool
	classID   int64
	className string

	hasImpl     bool
	implID      int64
	implAstID   uint64
	implVirtual bool
	implArgs    funcIdentity

	callRange srcpos.Range
}

// Walk ingests one translation unit's top-level node forest, writing
// every Class/Function/IncludeEdge/InheritanceEdge it discovers into
// the store. tuPath is the translation unit's own source path.
func (w *Walker) Walk(nodes []*astdump.Node, tuPath string) error {
	w.tuPath = tuPath
	w.identity = make(map[uint64]identityEntry)
	w.pending = make(map[uint64][]pendingCall)
	w.knownClasses = make(map[string]int64)
	w.headerFileIDs = make(map[string]int64)

	fileID, err := w.store.GetOrAddSourceFile(tuPath)
	if err != nil {
		return fmt.Errorf("register translation unit %q: %w", tuPath, err)
	}
	w.tuFileID = fileID

	for _, n := range nodes {
		if n.File == "" {
			continue
		}
		if err := w.walkNode(n, scope{}); err != nil {
			return err
		}
	}
	return nil
}

// TUFileID returns the store id of the Source file row registered for
// the most recent Walk call, so a driver can stamp last_analyzed_epoch
// once ingestion completes successfully.
func (w *Walker) TUFileID() int64 {
	return w.tuFileID
}

func (w *Walker) walkNode(n *astdump.Node, sc scope) error {
	switch n.Kind {
	case "NamespaceDecl":
		return w.walkNamespace(n, sc)
	case "CXXRecordDecl":
		return w.walkRecord(n, sc)
	case "ClassTemplateDecl":
		return w.walkClassTemplate(n, sc)
	case "ClassTemplateSpecializationDecl":
		return w.walkClassTemplateSpecialization(n, sc, sc.className)
	case "FunctionTemplateDecl":
		return w.walkFunctionTemplate(n, sc)
	case "FunctionDecl", "CXXMethodDecl":
		return w.walkFunction(n, sc, "")
	case "CallExpr", "CXXMemberCallExpr":
		return w.walkCall(n, sc)
	case "DeclRefExpr", "MemberExpr":
		return w.walkRef(n, sc)
	default:
		return w.walkChildren(n.Children, sc)
	}
}

func (w *Walker) walkChildren(children []*astdump.Node, sc scope) error {
	for _, c := range children {
		if err := w.walkNode(c, sc); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) walkNamespace(n *astdump.Node, sc scope) error {
	name := firstField(n.Attributes)
	if name == "" {
		return w.walkChildren(n.Children, sc)
	}

	qualified := sc.prefix + name
	if _, ignored := w.ignoredNamespaces[qualified]; ignored {
		return nil
	}

	child := sc
	child.prefix = qualified + "::"
	return w.walkChildren(n.Children, child)
}

func (w *Walker) walkRecord(n *astdump.Node, sc scope) error {
	if strings.Contains(n.Attributes, "implicit") {
		return w.walkChildren(n.Children, sc)
	}

	name := recordDeclName(n)
	if name == "" {
		return w.walkChildren(n.Children, sc)
	}

	qualifiedName := sc.prefix + name
	owner, err := w.ownerForDeclaration(n, sc)
	if err != nil {
		return err
	}
	classID, err := w.store.GetOrAddClass(qualifiedName, owner)
	if err != nil {
		return fmt.Errorf("register class %q: %w", qualifiedName, err)
	}
	w.knownClasses[qualifiedName] = classID

	child := sc
	child.prefix = qualifiedName + "::"
	child.hasClass = true
	child.classID = classID
	child.className = qualifiedName

	for _, c := range n.Children {
		if parent, ok := baseSpecifier(c); ok {
			resolved := w.resolveClassName(parent, sc.prefix)
			if parentID, found := w.knownClasses[resolved]; found {
				if err := w.store.AddInheritance(parentID, classID); err != nil {
					return err
				}
			}
			continue
		}
		if err := w.walkNode(c, child); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) walkClassTemplate(n *astdump.Node, sc scope) error {
	name := firstField(n.Attributes)
	if name == "" {
		return w.walkChildren(n.Children, sc)
	}

	qualifiedName := sc.prefix + name
	owner, err := w.ownerForDeclaration(n, sc)
	if err != nil {
		return err
	}
	classID, err := w.store.GetOrAddClass(qualifiedName, owner)
	if err != nil {
		return fmt.Errorf("register class template %q: %w", qualifiedName, err)
	}
	w.knownClasses[qualifiedName] = classID

	child := sc
	child.prefix = qualifiedName + "::"
	child.hasClass = true
	child.classID = classID
	child.className = qualifiedName

	for _, c := range n.Children {
		if c.Kind == "ClassTemplateSpecializationDecl" {
			if err := w.walkClassTemplateSpecialization(c, child, qualifiedName); err != nil {
				return err
			}
			continue
		}
		// The template's own pattern record repeats the template name;
		// its members belong to no specialization and are not rows.
		if c.Kind == "CXXRecordDecl" && recordDeclName(c) == name {
			continue
		}
		if err := w.walkNode(c, child); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) walkClassTemplateSpecialization(n *astdump.Node, sc scope, baseName string) error {
	if baseName == "" {
		return w.walkChildren(n.Children, sc)
	}

	var args []string
	for _, c := range n.ChildrenOf("TemplateArgument") {
		if strings.HasPrefix(strings.TrimSpace(c.Attributes), "type '") {
			args = append(args, extractQuoted(c.Attributes))
		}
	}
	specializedName := baseName + "<" + strings.Join(args, ", ") + ">"

	rewrittenPrefix := strings.TrimSuffix(sc.prefix, baseName+"::") + specializedName + "::"
	fullQualifiedName := strings.TrimSuffix(rewrittenPrefix, "::")

	owner, err := w.ownerForDeclaration(n, sc)
	if err != nil {
		return err
	}
	classID, err := w.store.GetOrAddClass(fullQualifiedName, owner)
	if err != nil {
		return fmt.Errorf("register class specialization %q: %w", fullQualifiedName, err)
	}
	w.knownClasses[fullQualifiedName] = classID

	child := sc
	child.prefix = rewrittenPrefix
	child.hasClass = true
	child.classID = classID
	child.className = fullQualifiedName
	return w.walkChildren(n.Children, child)
}

func (w *Walker) walkFunctionTemplate(n *astdump.Node, sc scope) error {
	templateName := firstField(n.Attributes)
	if templateName == "" {
		return nil
	}
	for _, c := range n.Children {
		if c.Kind != "FunctionDecl" {
			continue
		}
		// Only specializations carry TemplateArgument children; the
		// primary template's pattern does not and is not registered.
		templateArgs := c.ChildrenOf("TemplateArgument")
		if len(templateArgs) == 0 {
			continue
		}
		var args []string
		for _, gc := range templateArgs {
			if strings.HasPrefix(strings.TrimSpace(gc.Attributes), "type '") {
				args = append(args, extractQuoted(gc.Attributes))
			}
		}
		nameOverride := templateName + "<" + strings.Join(args, ", ") + ">"
		if err := w.walkFunction(c, sc, nameOverride); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) walkFunction(n *astdump.Node, sc scope, nameOverride string) error {
	if strings.Contains(n.Attributes, "implicit") {
		return nil
	}

	parsed := parseSignature(n.Attributes, sc.prefix, nameOverride)

	overridesChild := n.Child("Overrides")
	isVirtual := parsed.trailingVirtual || overridesChild != nil

	baseQualifiedName := ""
	if isVirtual {
		baseQualifiedName = w.resolveBaseQualifiedName(overridesChild, parsed.QualifiedName)
	}

	hasBody := n.Child("CompoundStmt") != nil

	var owner store.Owner
	if isVirtual {
		if !sc.hasClass {
			return fmt.Errorf("walker: virtual function %q has no enclosing class", parsed.QualifiedName)
		}
		owner = store.Owner{Kind: store.OwnedByClass, ID: sc.classID}
	} else if sc.hasClass {
		owner = store.Owner{Kind: store.OwnedByClass, ID: sc.classID}
	} else {
		var err error
		owner, err = w.ownerForDeclaration(n, sc)
		if err != nil {
			return err
		}
	}

	var storeID int64
	var kind store.FuncKind
	var err error
	if isVirtual {
		args := store.VirtualFuncCreationArgs{
			FuncCreationArgs: store.FuncCreationArgs{
				Name: parsed.Name, QualifiedName: parsed.QualifiedName,
				Signature: parsed.Signature, Range: n.Range, Owner: owner,
			},
			BaseQualifiedName: baseQualifiedName,
		}
		if hasBody {
			kind = store.VirtualFuncImpl
			storeID, err = w.store.GetOrAddVirtualFuncImpl(args)
		} else {
			kind = store.VirtualFuncDecl
			storeID, err = w.store.GetOrAddVirtualFuncDecl(args)
		}
	} else {
		args := store.FuncCreationArgs{
			Name: parsed.Name, QualifiedName: parsed.QualifiedName,
			Signature: parsed.Signature, Range: n.Range, Owner: owner,
		}
		if hasBody {
			kind = store.FuncImpl
			storeID, err = w.store.GetOrAddFuncImpl(args)
		} else {
			kind = store.FuncDecl
			storeID, err = w.store.GetOrAddFuncDecl(args)
		}
	}
	if err != nil {
		return fmt.Errorf("register function %q: %w", parsed.QualifiedName, err)
	}

	entry := identityEntry{
		Kind: kind, StoreID: storeID,
		funcIdentity: funcIdentity{
			Name: parsed.Name, QualifiedName: parsed.QualifiedName,
			Signature: parsed.Signature, BaseQualifiedName: baseQualifiedName,
		},
	}
	w.identity[n.ID] = entry
	if err := w.drainPending(n.ID, entry); err != nil {
		return err
	}
	if n.HasPrev {
		w.identity[n.PrevID] = entry
		if err := w.drainPending(n.PrevID, entry); err != nil {
			return err
		}
	}

	child := sc
	child.hasImpl = true
	child.implID = storeID
	child.implAstID = n.ID
	child.implVirtual = isVirtual
	child.implArgs = entry.funcIdentity
	child.callRange = srcpos.Range{}

	for _, c := range n.Children {
		if c.Kind == "Overrides" {
			continue
		}
		if err := w.walkNode(c, child); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) walkCall(n *astdump.Node, sc scope) error {
	child := sc
	child.callRange = n.Range
	return w.walkChildren(n.Children, child)
}

func (w *Walker) walkRef(n *astdump.Node, sc scope) error {
	if !sc.hasImpl || sc.callRange.IsZero() {
		return w.walkChildren(n.Children, sc)
	}

	targetID, ok := extractCallTargetID(n.Kind, n.Attributes)
	if !ok {
		return w.walkChildren(n.Children, sc)
	}

	callerOwner := store.Owner{Kind: store.OwnedByFuncImpl, ID: sc.implID}
	if sc.implVirtual {
		callerOwner = store.Owner{Kind: store.OwnedByVirtualFuncImpl, ID: sc.implID}
	}

	switch {
	case targetID == sc.implAstID:
		if err := w.addCall(callerOwner, sc.callRange, sc.implArgs, sc.implVirtual); err != nil {
			return err
		}
	default:
		if entry, found := w.identity[targetID]; found {
			if err := w.addCall(callerOwner, sc.callRange, entry.funcIdentity, entry.Kind.IsVirtual()); err != nil {
				return err
			}
		} else {
			w.pending[targetID] = append(w.pending[targetID], pendingCall{Owner: callerOwner, CallRange: sc.callRange})
		}
	}
	return w.walkChildren(n.Children, sc)
}

func (w *Walker) drainPending(astID uint64, target identityEntry) error {
	bucket := w.pending[astID]
	delete(w.pending, astID)
	for _, p := range bucket {
		if err := w.addCall(p.Owner, p.CallRange, target.funcIdentity, target.Kind.IsVirtual()); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) addCall(owner store.Owner, callRange srcpos.Range, target funcIdentity, virtual bool) error {
	if virtual {
		_, err := w.store.GetOrAddVirtualFuncCall(store.VirtualFuncCreationArgs{
			FuncCreationArgs: store.FuncCreationArgs{
				Name: target.Name, QualifiedName: target.QualifiedName,
				Signature: target.Signature, Range: callRange, Owner: owner,
			},
			BaseQualifiedName: target.BaseQualifiedName,
		})
		if err != nil {
			return fmt.Errorf("register virtual call to %q: %w", target.QualifiedName, err)
		}
		return nil
	}
	_, err := w.store.GetOrAddFuncCall(store.FuncCreationArgs{
		Name: target.Name, QualifiedName: target.QualifiedName,
		Signature: target.Signature, Range: callRange, Owner: owner,
	})
	if err != nil {
		return fmt.Errorf("register call to %q: %w", target.QualifiedName, err)
	}
	return nil
}

// ownerForDeclaration derives the Source/Header/Class owner for a
// top-level declaration (a class or free function not lexically nested
// in another class), following the file-of-node policy: the TU's own
// path is Source, anything else is a Header reached via an include
// edge from the TU.
func (w *Walker) ownerForDeclaration(n *astdump.Node, sc scope) (store.Owner, error) {
	if sc.hasClass {
		return store.Owner{Kind: store.OwnedByClass, ID: sc.classID}, nil
	}
	path := n.File
	if path == "" {
		path = w.tuPath
	}
	if path == w.tuPath {
		return store.Owner{Kind: store.OwnedBySource, ID: w.tuFileID}, nil
	}
	if id, ok := w.headerFileIDs[path]; ok {
		return store.Owner{Kind: store.OwnedByHeader, ID: id}, nil
	}
	id, err := w.store.GetOrAddHeaderFile(path)
	if err != nil {
		return store.Owner{}, fmt.Errorf("register header %q: %w", path, err)
	}
	w.headerFileIDs[path] = id
	if err := w.store.AddInclude(w.tuFileID, id); err != nil {
		return store.Owner{}, err
	}
	return store.Owner{Kind: store.OwnedByHeader, ID: id}, nil
}

// resolveClassName looks up a base-class name against knownClasses,
// trying the raw name first and then the name qualified by the
// enclosing prefix (covers same-namespace bases written unqualified).
func (w *Walker) resolveClassName(name, prefix string) string {
	if _, ok := w.knownClasses[name]; ok {
		return name
	}
	qualified := prefix + name
	if _, ok := w.knownClasses[qualified]; ok {
		return qualified
	}
	return name
}

// resolveBaseQualifiedName picks a virtual method's base qualified
// name: inherit from the overridden function's own base identity when
// it's already known, otherwise fall back to the raw text Clang prints
// after the overridden function's id, otherwise the function is its own
// base (the root of its virtual chain).
func (w *Walker) resolveBaseQualifiedName(overridesChild *astdump.Node, ownQualifiedName string) string {
	if overridesChild == nil {
		return ownQualifiedName
	}
	content := strings.Trim(overridesChild.Attributes, "[] ")
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return ownQualifiedName
	}
	if id, ok := parseHexToken(fields[0]); ok {
		if entry, found := w.identity[id]; found && entry.BaseQualifiedName != "" {
			return entry.BaseQualifiedName
		}
		if rest := strings.TrimSpace(strings.Join(fields[1:], " ")); rest != "" {
			return rest
		}
	}
	return ownQualifiedName
}

var hexTokenRe = regexp.MustCompile(`^0x[0-9a-f]+$`)

func parseHexToken(tok string) (uint64, bool) {
	if !hexTokenRe.MatchString(tok) {
		return 0, false
	}
	v, err := strconv.ParseUint(tok[2:], 16, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func extractCallTargetID(kind, attrs string) (uint64, bool) {
	fields := strings.Fields(attrs)
	switch kind {
	case "DeclRefExpr":
		for i, f := range fields {
			if (f == "Function" || f == "CXXMethod") && i+1 < len(fields) {
				if id, ok := parseHexToken(fields[i+1]); ok {
					return id, true
				}
			}
		}
		return 0, false
	case "MemberExpr":
		if len(fields) == 0 {
			return 0, false
		}
		return parseHexToken(fields[len(fields)-1])
	}
	return 0, false
}

// recordDeclName extracts the declared name from a CXXRecordDecl's
// attribute string ("class Foo definition" -> "Foo"), or "" when no
// class/struct keyword introduces a name.
func recordDeclName(n *astdump.Node) string {
	fields := strings.Fields(n.Attributes)
	kwIdx := indexOfAny(fields, "class", "struct")
	if kwIdx == -1 || kwIdx+1 >= len(fields) {
		return ""
	}
	return fields[kwIdx+1]
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func indexOfAny(fields []string, want ...string) int {
	for i, f := range fields {
		for _, w := range want {
			if f == w {
				return i
			}
		}
	}
	return -1
}

func extractQuoted(s string) string {
	start := strings.IndexByte(s, '\'')
	if start == -1 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '\'')
	if end == -1 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// baseSpecifier reports whether n is a base-class pseudo-node (a bare
// access-specifier kind whose attributes carry a single quoted class
// name, as opposed to the same bare kind used as an in-class access
// specifier, whose attributes are empty).
func baseSpecifier(n *astdump.Node) (string, bool) {
	switch n.Kind {
	case "public", "protected", "private":
	default:
		return "", false
	}
	name := extractQuoted(n.Attributes)
	if name == "" {
		return "", false
	}
	return name, true
}
