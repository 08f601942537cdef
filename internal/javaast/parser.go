package javaast

import (
	"errors"
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

// ErrSyntax is returned when the source does not parse cleanly.
var ErrSyntax = errors.New("java syntax error")

// Parse builds a CompilationUnit for src. Files that contain syntax errors
// are rejected so that no edit is ever computed against a broken tree.
func Parse(path string, src []byte) (*CompilationUnit, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tree_sitter.NewLanguage(tree_sitter_java.Language())); err != nil {
		return nil, fmt.Errorf("failed to load java grammar: %w", err)
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%w: %s:%d", ErrSyntax, path, firstErrorRow(root)+1)
	}

	b := &builder{src: src, unit: &CompilationUnit{Path: path, Source: src}}
	b.program(root)

	return b.unit, nil
}

type builder struct {
	src  []byte
	unit *CompilationUnit
}

func (b *builder) program(root *tree_sitter.Node) {
	for _, child := range children(root) {
		switch child.Kind() {
		case "package_declaration":
			for _, part := range children(child) {
				if part.Kind() == "scoped_identifier" || part.Kind() == "identifier" {
					b.unit.Package = b.text(part)
				}
			}

			b.unit.PackageSpan = span(child)
		case "import_declaration":
			b.unit.Imports = append(b.unit.Imports, b.importDecl(child))
		default:
			if decl := b.typeDecl(child, nil); decl != nil {
				b.unit.Types = append(b.unit.Types, decl)
			}
		}
	}
}

func (b *builder) importDecl(node *tree_sitter.Node) *Import {
	imp := &Import{Span: span(node)}

	for _, child := range children(node) {
		switch child.Kind() {
		case "static":
			imp.Static = true
		case "asterisk":
			imp.OnDemand = true
		case "scoped_identifier", "identifier":
			imp.Name = b.text(child)
		}
	}

	return imp
}

var typeDeclKinds = map[string]string{
	"class_declaration":     KindClass,
	"interface_declaration": KindInterface,
	"enum_declaration":      KindEnum,
	"record_declaration":    KindRecord,
}

func (b *builder) typeDecl(node *tree_sitter.Node, outer *TypeDecl) *TypeDecl {
	kind, ok := typeDeclKinds[node.Kind()]
	if !ok {
		return nil
	}

	decl := &TypeDecl{
		Kind:  kind,
		Span:  span(node),
		Outer: outer,
		Unit:  b.unit,
	}

	if name := node.ChildByFieldName("name"); name != nil {
		decl.Name = b.text(name)
		decl.NameSpan = span(name)
	}

	decl.Modifiers = b.modifiers(node)

	if superclass := node.ChildByFieldName("superclass"); superclass != nil {
		decl.SuperclassSpan = span(superclass)
		if typeNode := firstNamed(superclass); typeNode != nil {
			decl.Superclass = b.typeRef(typeNode)
		}
	}

	if interfaces := node.ChildByFieldName("interfaces"); interfaces != nil {
		decl.InterfacesSpan = span(interfaces)

		for _, child := range children(interfaces) {
			if child.Kind() != "type_list" {
				continue
			}

			for _, typeNode := range namedChildren(child) {
				decl.Interfaces = append(decl.Interfaces, b.typeRef(typeNode))
			}
		}
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		decl.HeaderEnd = decl.Span.End
		return decl
	}

	decl.Body = span(body)
	decl.HeaderEnd = decl.Body.Start

	for _, child := range children(node) {
		if int(child.EndByte()) <= decl.Body.Start && !isComment(child) {
			decl.HeaderEnd = int(child.EndByte())
		}
	}

	b.members(body, decl)

	return decl
}

func (b *builder) members(body *tree_sitter.Node, decl *TypeDecl) {
	for _, child := range children(body) {
		switch child.Kind() {
		case "field_declaration":
			field := b.field(child)
			field.Owner = decl
			decl.Fields = append(decl.Fields, field)
		case "method_declaration":
			decl.Methods = append(decl.Methods, b.method(child))
		case "enum_body_declarations":
			b.members(child, decl)
		default:
			if nested := b.typeDecl(child, decl); nested != nil {
				decl.Types = append(decl.Types, nested)
			}
		}
	}
}

func (b *builder) modifiers(node *tree_sitter.Node) *Modifiers {
	start := int(node.StartByte())
	mods := &Modifiers{Span: Span{Start: start, End: start}, Next: start}

	all := children(node)
	for i, child := range all {
		if child.Kind() != "modifiers" {
			continue
		}

		mods.Span = span(child)
		mods.Next = mods.Span.End

		if i+1 < len(all) {
			mods.Next = int(all[i+1].StartByte())
		}

		for _, el := range children(child) {
			if isComment(el) {
				continue
			}

			mod := &Modifier{Text: b.text(el), Span: span(el)}
			if el.Kind() == "marker_annotation" || el.Kind() == "annotation" {
				if name := el.ChildByFieldName("name"); name != nil {
					mod.Annotation = b.text(name)
				}
			}

			mods.Elements = append(mods.Elements, mod)
		}

		break
	}

	return mods
}

func (b *builder) typeRef(node *tree_sitter.Node) *TypeRef {
	ref := &TypeRef{Text: b.text(node), Span: span(node)}
	ref.Name = ref.Text

	if node.Kind() == "generic_type" {
		if base := firstNamed(node); base != nil {
			ref.Name = b.text(base)
		}
	}

	return ref
}

func (b *builder) field(node *tree_sitter.Node) *FieldDecl {
	field := &FieldDecl{Span: span(node), Modifiers: b.modifiers(node)}

	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		field.Type = b.typeRef(typeNode)
	}

	declarator := node.ChildByFieldName("declarator")
	if declarator == nil {
		return field
	}

	if name := declarator.ChildByFieldName("name"); name != nil {
		field.Name = b.text(name)
		field.NameSpan = span(name)
	}

	if value := declarator.ChildByFieldName("value"); value != nil {
		field.Value = span(value)
		if value.Kind() == "object_creation_expression" {
			field.Creation = b.creation(value)
		}
	}

	return field
}

func (b *builder) creation(node *tree_sitter.Node) *Creation {
	creation := &Creation{Span: span(node)}

	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		creation.Type = b.typeRef(typeNode)
	}

	if args := node.ChildByFieldName("arguments"); args != nil {
		creation.Arguments = span(args)
	}

	for _, child := range children(node) {
		if child.Kind() != "class_body" {
			continue
		}

		body := &AnonymousBody{Span: span(child)}

		for _, member := range namedChildren(child) {
			if isComment(member) {
				continue
			}

			body.Members++

			if member.Kind() == "method_declaration" {
				body.Methods = append(body.Methods, b.method(member))
			}
		}

		creation.Body = body
	}

	return creation
}

func (b *builder) method(node *tree_sitter.Node) *MethodDecl {
	method := &MethodDecl{Span: span(node), Modifiers: b.modifiers(node)}

	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		method.ReturnType = b.text(typeNode)
	}

	if name := node.ChildByFieldName("name"); name != nil {
		method.Name = b.text(name)
		method.NameSpan = span(name)
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		method.Params = b.params(params)
	}

	for _, child := range children(node) {
		if child.Kind() != "throws" {
			continue
		}

		throws := &ThrowsClause{Span: span(child)}
		for _, typeNode := range namedChildren(child) {
			if !isComment(typeNode) {
				throws.Types = append(throws.Types, b.typeRef(typeNode))
			}
		}

		method.Throws = throws
	}

	if body := node.ChildByFieldName("body"); body != nil {
		method.Body = span(body)
		method.SuperCalls = b.superCalls(body, nil)
	}

	return method
}

func (b *builder) params(node *tree_sitter.Node) *ParamList {
	list := &ParamList{Span: span(node)}

	for _, child := range children(node) {
		if child.Kind() != "formal_parameter" && child.Kind() != "spread_parameter" {
			continue
		}

		param := &Param{Span: span(child)}
		if typeNode := child.ChildByFieldName("type"); typeNode != nil {
			param.Type = b.text(typeNode)
		}

		if name := child.ChildByFieldName("name"); name != nil {
			param.Name = b.text(name)
		}

		list.Params = append(list.Params, param)
	}

	return list
}

// superCalls collects super.x(...) invocations without descending into
// nested class bodies, whose super refers to a different type.
func (b *builder) superCalls(node *tree_sitter.Node, acc []*SuperCall) []*SuperCall {
	if node.Kind() == "class_body" {
		return acc
	}

	if node.Kind() == "method_invocation" {
		if object := node.ChildByFieldName("object"); object != nil && object.Kind() == "super" {
			acc = append(acc, b.superCall(node))
		}
	}

	for _, child := range children(node) {
		acc = b.superCalls(child, acc)
	}

	return acc
}

func (b *builder) superCall(node *tree_sitter.Node) *SuperCall {
	call := &SuperCall{Span: span(node)}

	if name := node.ChildByFieldName("name"); name != nil {
		call.Name = b.text(name)
		call.NameSpan = span(name)
	}

	if args := node.ChildByFieldName("arguments"); args != nil {
		call.Arguments = span(args)
		for _, arg := range namedChildren(args) {
			if !isComment(arg) {
				call.ArgCount++
			}
		}
	}

	if parent := node.Parent(); parent != nil && parent.Kind() == "expression_statement" {
		call.Statement = span(parent)
	}

	return call
}

func (b *builder) text(node *tree_sitter.Node) string {
	return node.Utf8Text(b.src)
}

func span(node *tree_sitter.Node) Span {
	return Span{Start: int(node.StartByte()), End: int(node.EndByte())}
}

func children(node *tree_sitter.Node) []*tree_sitter.Node {
	count := node.ChildCount()
	out := make([]*tree_sitter.Node, 0, count)

	for i := uint(0); i < count; i++ {
		if child := node.Child(i); child != nil {
			out = append(out, child)
		}
	}

	return out
}

func namedChildren(node *tree_sitter.Node) []*tree_sitter.Node {
	var out []*tree_sitter.Node

	for _, child := range children(node) {
		if child.IsNamed() {
			out = append(out, child)
		}
	}

	return out
}

func firstNamed(node *tree_sitter.Node) *tree_sitter.Node {
	for _, child := range namedChildren(node) {
		if !isComment(child) {
			return child
		}
	}

	return nil
}

func isComment(node *tree_sitter.Node) bool {
	return node.Kind() == "line_comment" || node.Kind() == "block_comment"
}

func firstErrorRow(node *tree_sitter.Node) uint {
	if node.IsError() || node.IsMissing() {
		return node.StartPosition().Row
	}

	for _, child := range children(node) {
		if child.HasError() || child.IsMissing() {
			return firstErrorRow(child)
		}
	}

	return node.StartPosition().Row
}
