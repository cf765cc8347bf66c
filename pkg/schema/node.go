package schema

import "fmt"

// Kind identifies the variant of a schema node.
type Kind int

const (
	KindService Kind = iota
	KindMethod
	KindMessage
	KindField
	KindEnum
	KindEnumValue
	KindOption
)

func (k Kind) String() string {
	switch k {
	case KindService:
		return "service"
	case KindMethod:
		return "method"
	case KindMessage:
		return "message"
	case KindField:
		return "field"
	case KindEnum:
		return "enum"
	case KindEnumValue:
		return "enum_value"
	case KindOption:
		return "option"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Location is a position in the originating descriptor source.
// Line and Column are 1-based; a zero Line means the input carried no
// source info for the node.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (l Location) String() string {
	if l.Line == 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Node is the read-only view shared by all schema node variants.
type Node interface {
	Kind() Kind
	// Path is the stable dotted identity, e.g. "library.v1.Book.name".
	Path() string
	// Name is the declared name, e.g. "name".
	Name() string
	// ParentPath is the path of the enclosing node, or the package name
	// for top-level declarations.
	ParentPath() string
	Location() Location
	// LeadingComments returns the trimmed lines of the comment block
	// attached to the node's declaration.
	LeadingComments() []string
}

type baseNode struct {
	path     string
	name     string
	parent   string
	loc      Location
	comments []string
}

func (b *baseNode) Path() string              { return b.path }
func (b *baseNode) Name() string              { return b.name }
func (b *baseNode) ParentPath() string        { return b.parent }
func (b *baseNode) Location() Location        { return b.loc }
func (b *baseNode) LeadingComments() []string { return b.comments }

// ServiceNode is a service declaration.
type ServiceNode struct {
	baseNode
}

func (n *ServiceNode) Kind() Kind { return KindService }

// HTTPBinding is the google.api.http annotation on a method, reduced to
// the attributes rules care about.
type HTTPBinding struct {
	// Verb is the HTTP method: GET, POST, PUT, PATCH, DELETE or CUSTOM.
	Verb string
	// Pattern is the URL path template.
	Pattern string
	// Body is the http rule body field, "" when unset.
	Body string
	// AdditionalBindings counts nested additional_bindings entries.
	AdditionalBindings int
}

// MethodNode is an rpc declaration.
type MethodNode struct {
	baseNode
	// RequestType and ResponseType are full message names without the
	// leading dot, resolved through Model.Resolve.
	RequestType     string
	ResponseType    string
	ClientStreaming bool
	ServerStreaming bool
	// HTTP is nil when the method declares no google.api.http binding.
	HTTP *HTTPBinding
}

func (n *MethodNode) Kind() Kind { return KindMethod }

// MessageNode is a message declaration, top-level or nested.
type MessageNode struct {
	baseNode
	// MapEntry marks synthetic map entry messages, which rules skip.
	MapEntry bool
}

func (n *MessageNode) Kind() Kind { return KindMessage }

// FieldNode is a field declaration inside a message.
type FieldNode struct {
	baseNode
	Number int32
	// TypeName is the scalar type name ("string", "int32", ...) or the
	// full name of the message/enum type.
	TypeName string
	// TypeRef is the path of the referenced message/enum node, "" for
	// scalar fields and for well-known imported types.
	TypeRef   string
	IsMessage bool
	IsEnum    bool
	Repeated  bool
	Optional  bool
	// OneofName is the containing oneof, "" when not in a oneof.
	OneofName string
	// Behaviors holds declared google.api.field_behavior tags, e.g.
	// "REQUIRED", "OUTPUT_ONLY".
	Behaviors []string
}

func (n *FieldNode) Kind() Kind { return KindField }

// HasBehavior reports whether the field declares the given behavior tag.
func (n *FieldNode) HasBehavior(tag string) bool {
	for _, b := range n.Behaviors {
		if b == tag {
			return true
		}
	}
	return false
}

// EnumNode is an enum declaration, top-level or nested.
type EnumNode struct {
	baseNode
}

func (n *EnumNode) Kind() Kind { return KindEnum }

// EnumValueNode is a single value of an enum.
type EnumValueNode struct {
	baseNode
	Number int32
}

func (n *EnumValueNode) Kind() Kind { return KindEnumValue }

// OptionNode is an explicitly set option on a declaration. Extension
// options are named with the parenthesized full extension name, matching
// proto option syntax, e.g. "(google.api.http)".
type OptionNode struct {
	baseNode
	// Value is a compact rendering of the option value.
	Value string
}

func (n *OptionNode) Kind() Kind { return KindOption }
