package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bufbuild/protocompile"
	"google.golang.org/genproto/googleapis/api/annotations"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// FileDescriptorProto field numbers used for SourceCodeInfo paths.
const (
	fileMessagePath = 4
	fileEnumPath    = 5
	fileServicePath = 6

	messageFieldPath  = 2
	messageNestedPath = 3
	messageEnumPath   = 4

	enumValuePath = 2

	serviceMethodPath = 2
)

// wellKnownPrefixes are type namespaces that may be referenced without
// being part of the loaded surface. References into them resolve
// implicitly instead of raising a ParseError, and files under them are
// indexed for resolution but excluded from the lintable node set.
var wellKnownPrefixes = []string{
	"google.protobuf.",
	"google.api.",
	"google.longrunning.",
	"google.rpc.",
	"google.type.",
}

func isWellKnown(fullName string) bool {
	for _, p := range wellKnownPrefixes {
		if strings.HasPrefix(fullName, p) {
			return true
		}
	}
	return false
}

// Load builds a Model from a serialized descriptor input. Inputs named
// *.proto are treated as proto source and compiled; anything else is
// decoded as a binary FileDescriptorSet.
func Load(ctx context.Context, filename string, data []byte) (*Model, error) {
	if strings.HasSuffix(filename, ".proto") {
		return LoadSource(ctx, filename, string(data))
	}
	return LoadSet(filename, data)
}

// LoadSource compiles raw proto source with protocompile and builds a
// Model from the result. Imports of google.api and google.protobuf files
// are served from the process-global registry and the standard imports.
func LoadSource(ctx context.Context, filename, content string) (*Model, error) {
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(protocompile.CompositeResolver{
			&protocompile.SourceResolver{
				Accessor: protocompile.SourceAccessorFromMap(map[string]string{
					filename: content,
				}),
			},
			protocompile.ResolverFunc(resolveFromGlobalRegistry),
		}),
		SourceInfoMode: protocompile.SourceInfoStandard,
	}

	files, err := compiler.Compile(ctx, filename)
	if err != nil {
		return nil, parseErrorf(filename, err, "compilation failed")
	}

	fds := make([]*descriptorpb.FileDescriptorProto, 0, len(files))
	for _, f := range files {
		fds = append(fds, protodesc.ToFileDescriptorProto(f))
	}
	return build(filename, fds)
}

// LoadSet decodes a binary FileDescriptorSet (protoc -o output) and builds
// a Model from it. Files under well-known google namespaces that were
// embedded via --include_imports contribute to reference resolution but
// produce no lintable nodes.
func LoadSet(filename string, data []byte) (*Model, error) {
	var set descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &set); err != nil {
		return nil, parseErrorf(filename, err, "not a valid FileDescriptorSet")
	}
	if len(set.GetFile()) == 0 {
		return nil, parseErrorf(filename, nil, "descriptor set contains no files")
	}
	return build(filename, set.GetFile())
}

func resolveFromGlobalRegistry(path string) (protocompile.SearchResult, error) {
	fd, err := protoregistry.GlobalFiles.FindFileByPath(path)
	if err != nil {
		return protocompile.SearchResult{}, err
	}
	return protocompile.SearchResult{Desc: fd}, nil
}

// build assembles the node graph and verifies every cross reference.
func build(filename string, fds []*descriptorpb.FileDescriptorProto) (*Model, error) {
	b := &builder{
		model:    newModel(),
		filename: filename,
		typeIdx:  make(map[string]bool),
	}

	// First pass: index every declared type name, including types from
	// embedded well-known files, so references can be verified.
	for _, fd := range fds {
		b.indexTypes(fd)
	}

	// Second pass: build nodes for the lintable files.
	for _, fd := range fds {
		if isWellKnown(fd.GetPackage() + ".") {
			continue
		}
		b.addFile(fd)
	}

	if err := b.verifyReferences(); err != nil {
		return nil, err
	}
	return b.model, nil
}

type builder struct {
	model    *Model
	filename string
	typeIdx  map[string]bool
}

func (b *builder) indexTypes(fd *descriptorpb.FileDescriptorProto) {
	prefix := fd.GetPackage()
	if prefix != "" {
		prefix += "."
	}
	var indexMessage func(prefix string, msg *descriptorpb.DescriptorProto)
	indexMessage = func(prefix string, msg *descriptorpb.DescriptorProto) {
		full := prefix + msg.GetName()
		b.typeIdx[full] = true
		for _, nested := range msg.GetNestedType() {
			indexMessage(full+".", nested)
		}
		for _, enum := range msg.GetEnumType() {
			b.typeIdx[full+"."+enum.GetName()] = true
		}
	}
	for _, msg := range fd.GetMessageType() {
		indexMessage(prefix, msg)
	}
	for _, enum := range fd.GetEnumType() {
		b.typeIdx[prefix+enum.GetName()] = true
	}
}

func (b *builder) addFile(fd *descriptorpb.FileDescriptorProto) {
	si := newSourceInfo(fd.GetName(), fd.GetSourceCodeInfo())
	pkg := fd.GetPackage()

	for i, msg := range fd.GetMessageType() {
		b.addMessage(pkg, msg, si, []int32{fileMessagePath, int32(i)})
	}
	for i, enum := range fd.GetEnumType() {
		b.addEnum(pkg, enum, si, []int32{fileEnumPath, int32(i)})
	}
	for i, svc := range fd.GetService() {
		b.addService(pkg, svc, si, []int32{fileServicePath, int32(i)})
	}
}

func (b *builder) addService(pkg string, svc *descriptorpb.ServiceDescriptorProto, si *sourceInfo, path []int32) {
	svcPath := joinPath(pkg, svc.GetName())
	node := &ServiceNode{baseNode: baseNode{
		path:     svcPath,
		name:     svc.GetName(),
		parent:   pkg,
		loc:      si.location(path),
		comments: si.comments(path),
	}}
	b.model.add(node)
	b.addOptions(svcPath, svc.GetOptions(), node.loc)

	for i, m := range svc.GetMethod() {
		mPath := append(append([]int32{}, path...), serviceMethodPath, int32(i))
		method := &MethodNode{
			baseNode: baseNode{
				path:     svcPath + "." + m.GetName(),
				name:     m.GetName(),
				parent:   svcPath,
				loc:      si.location(mPath),
				comments: si.comments(mPath),
			},
			RequestType:     strings.TrimPrefix(m.GetInputType(), "."),
			ResponseType:    strings.TrimPrefix(m.GetOutputType(), "."),
			ClientStreaming: m.GetClientStreaming(),
			ServerStreaming: m.GetServerStreaming(),
			HTTP:            extractHTTPBinding(m.GetOptions()),
		}
		b.model.add(method)
		b.addOptions(method.path, m.GetOptions(), method.loc)
	}
}

func (b *builder) addMessage(parent string, msg *descriptorpb.DescriptorProto, si *sourceInfo, path []int32) {
	msgPath := joinPath(parent, msg.GetName())
	node := &MessageNode{
		baseNode: baseNode{
			path:     msgPath,
			name:     msg.GetName(),
			parent:   parent,
			loc:      si.location(path),
			comments: si.comments(path),
		},
		MapEntry: msg.GetOptions().GetMapEntry(),
	}
	b.model.add(node)
	b.addOptions(msgPath, msg.GetOptions(), node.loc)

	for i, f := range msg.GetField() {
		fPath := append(append([]int32{}, path...), messageFieldPath, int32(i))
		field := &FieldNode{
			baseNode: baseNode{
				path:     msgPath + "." + f.GetName(),
				name:     f.GetName(),
				parent:   msgPath,
				loc:      si.location(fPath),
				comments: si.comments(fPath),
			},
			Number:    f.GetNumber(),
			TypeName:  fieldTypeName(f),
			IsMessage: f.GetType() == descriptorpb.FieldDescriptorProto_TYPE_MESSAGE,
			IsEnum:    f.GetType() == descriptorpb.FieldDescriptorProto_TYPE_ENUM,
			Repeated:  f.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_REPEATED,
			Optional:  f.GetProto3Optional(),
			Behaviors: extractFieldBehaviors(f.GetOptions()),
		}
		if f.OneofIndex != nil && !f.GetProto3Optional() {
			oneofs := msg.GetOneofDecl()
			if idx := int(f.GetOneofIndex()); idx < len(oneofs) {
				field.OneofName = oneofs[idx].GetName()
			}
		}
		b.model.add(field)
		b.addOptions(field.path, f.GetOptions(), field.loc)
	}

	for i, nested := range msg.GetNestedType() {
		nPath := append(append([]int32{}, path...), messageNestedPath, int32(i))
		b.addMessage(msgPath, nested, si, nPath)
	}
	for i, enum := range msg.GetEnumType() {
		ePath := append(append([]int32{}, path...), messageEnumPath, int32(i))
		b.addEnum(msgPath, enum, si, ePath)
	}
}

func (b *builder) addEnum(parent string, enum *descriptorpb.EnumDescriptorProto, si *sourceInfo, path []int32) {
	enumPath := joinPath(parent, enum.GetName())
	node := &EnumNode{baseNode: baseNode{
		path:     enumPath,
		name:     enum.GetName(),
		parent:   parent,
		loc:      si.location(path),
		comments: si.comments(path),
	}}
	b.model.add(node)
	b.addOptions(enumPath, enum.GetOptions(), node.loc)

	for i, v := range enum.GetValue() {
		vPath := append(append([]int32{}, path...), enumValuePath, int32(i))
		b.model.add(&EnumValueNode{
			baseNode: baseNode{
				path:     enumPath + "." + v.GetName(),
				name:     v.GetName(),
				parent:   enumPath,
				loc:      si.location(vPath),
				comments: si.comments(vPath),
			},
			Number: v.GetNumber(),
		})
	}
}

// addOptions creates OptionNode children for every explicitly set option
// field, sorted by option name so node order never depends on protoreflect
// iteration order.
func (b *builder) addOptions(parent string, opts proto.Message, loc Location) {
	if opts == nil {
		return
	}
	refl := opts.ProtoReflect()
	if !refl.IsValid() {
		return
	}
	type optEntry struct {
		name  string
		value string
	}
	var entries []optEntry
	refl.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		// Parentheses keep option paths disjoint from sibling field and
		// nested type names, which cannot contain them.
		name := "(" + string(fd.Name()) + ")"
		if fd.IsExtension() {
			name = "(" + string(fd.FullName()) + ")"
		}
		entries = append(entries, optEntry{name: name, value: renderOptionValue(fd, v)})
		return true
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	for _, e := range entries {
		b.model.add(&OptionNode{
			baseNode: baseNode{
				path:   parent + "." + e.name,
				name:   e.name,
				parent: parent,
				loc:    loc,
			},
			Value: e.value,
		})
	}
}

func renderOptionValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) string {
	if fd.Kind() == protoreflect.MessageKind && !fd.IsList() && !fd.IsMap() {
		out, err := prototext.MarshalOptions{Multiline: false}.Marshal(v.Message().Interface())
		if err == nil {
			return strings.TrimSpace(string(out))
		}
	}
	return fmt.Sprintf("%v", v.Interface())
}

// verifyReferences checks that every method request/response type and
// every message/enum typed field resolves within the load. A dangling
// reference means the input itself is malformed.
func (b *builder) verifyReferences() error {
	for _, path := range b.model.order {
		switch n := b.model.nodes[path].(type) {
		case *MethodNode:
			if err := b.checkRef(n.RequestType, "request type", n); err != nil {
				return err
			}
			if err := b.checkRef(n.ResponseType, "response type", n); err != nil {
				return err
			}
		case *FieldNode:
			if ref := fieldTypeRef(n); ref != "" {
				if err := b.checkRef(ref, "field type", n); err != nil {
					return err
				}
				if _, ok := b.model.Resolve(ref); ok {
					n.TypeRef = ref
				}
			}
		}
	}
	return nil
}

func (b *builder) checkRef(ref, what string, n Node) error {
	if ref == "" {
		return parseErrorf(b.filename, nil, "%s missing %s", n.Path(), what)
	}
	if b.typeIdx[ref] || isWellKnown(ref) {
		return nil
	}
	return parseErrorf(b.filename, nil, "%s references unknown %s %q", n.Path(), what, ref)
}

// fieldTypeRef returns the full type name for message/enum fields, which
// is what TypeName already holds for those kinds.
func fieldTypeRef(n *FieldNode) string {
	if n.IsMessage || n.IsEnum {
		return n.TypeName
	}
	return ""
}

func fieldTypeName(f *descriptorpb.FieldDescriptorProto) string {
	switch f.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE,
		descriptorpb.FieldDescriptorProto_TYPE_ENUM,
		descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		return strings.TrimPrefix(f.GetTypeName(), ".")
	default:
		return strings.ToLower(strings.TrimPrefix(f.GetType().String(), "TYPE_"))
	}
}

func extractHTTPBinding(opts *descriptorpb.MethodOptions) *HTTPBinding {
	if opts == nil || !proto.HasExtension(opts, annotations.E_Http) {
		return nil
	}
	rule, ok := proto.GetExtension(opts, annotations.E_Http).(*annotations.HttpRule)
	if !ok || rule == nil {
		return nil
	}
	binding := &HTTPBinding{
		Body:               rule.GetBody(),
		AdditionalBindings: len(rule.GetAdditionalBindings()),
	}
	switch p := rule.GetPattern().(type) {
	case *annotations.HttpRule_Get:
		binding.Verb, binding.Pattern = "GET", p.Get
	case *annotations.HttpRule_Put:
		binding.Verb, binding.Pattern = "PUT", p.Put
	case *annotations.HttpRule_Post:
		binding.Verb, binding.Pattern = "POST", p.Post
	case *annotations.HttpRule_Delete:
		binding.Verb, binding.Pattern = "DELETE", p.Delete
	case *annotations.HttpRule_Patch:
		binding.Verb, binding.Pattern = "PATCH", p.Patch
	case *annotations.HttpRule_Custom:
		binding.Verb, binding.Pattern = "CUSTOM", p.Custom.GetPath()
	default:
		return nil
	}
	return binding
}

func extractFieldBehaviors(opts *descriptorpb.FieldOptions) []string {
	if opts == nil || !proto.HasExtension(opts, annotations.E_FieldBehavior) {
		return nil
	}
	raw, ok := proto.GetExtension(opts, annotations.E_FieldBehavior).([]annotations.FieldBehavior)
	if !ok || len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, b := range raw {
		out = append(out, b.String())
	}
	return out
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
