package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/platinummonkey/apilint/pkg/catalog"
	"github.com/platinummonkey/apilint/pkg/schema"
)

func loadModel(t *testing.T, source string) (*schema.Model, *catalog.Context) {
	t.Helper()
	model, err := schema.LoadSource(context.Background(), "test.proto", source)
	require.NoError(t, err)
	return model, &catalog.Context{Model: model}
}

func checkNode(t *testing.T, rule *catalog.Rule, model *schema.Model, ctx *catalog.Context, path string) []catalog.Problem {
	t.Helper()
	node, ok := model.Node(path)
	require.True(t, ok, "node %s not in model", path)
	require.True(t, rule.Targets(node.Kind()))
	if rule.Applies != nil && !rule.Applies(node, ctx) {
		return nil
	}
	return rule.Check(node, ctx)
}

func TestHTTPBindingRule_FlagsUnannotatedMethod(t *testing.T) {
	model, ctx := loadModel(t, `syntax = "proto3";
package library.v1;

service LibraryService {
  rpc GetBook(GetBookRequest) returns (Book);
}

message GetBookRequest {
  string name = 1;
}

message Book {
  string name = 1;
}
`)

	problems := checkNode(t, NewHTTPBindingRule(), model, ctx, "library.v1.LibraryService.GetBook")
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Message, "google.api.http")
}

func TestHTTPBindingRule_AcceptsAnnotatedMethod(t *testing.T) {
	model, ctx := loadModel(t, `syntax = "proto3";
package library.v1;

import "google/api/annotations.proto";

service LibraryService {
  rpc GetBook(GetBookRequest) returns (Book) {
    option (google.api.http) = { get: "/v1/{name=books/*}" };
  }
}

message GetBookRequest {
  string name = 1;
}

message Book {
  string name = 1;
}
`)

	assert.Empty(t, checkNode(t, NewHTTPBindingRule(), model, ctx, "library.v1.LibraryService.GetBook"))
}

func TestHTTPBindingRule_SkipsStreamingMethods(t *testing.T) {
	model, ctx := loadModel(t, `syntax = "proto3";
package library.v1;

service LibraryService {
  rpc StreamBooks(StreamBooksRequest) returns (stream Book);
}

message StreamBooksRequest {
  string parent = 1;
}

message Book {
  string name = 1;
}
`)

	node, _ := model.Node("library.v1.LibraryService.StreamBooks")
	assert.False(t, NewHTTPBindingRule().Applies(node, ctx))
}

func TestGetRequestNameRule(t *testing.T) {
	model, ctx := loadModel(t, `syntax = "proto3";
package library.v1;

service LibraryService {
  rpc GetBook(GetBookRequest) returns (Book);
  rpc GetShelf(GetShelfRequest) returns (Shelf);
}

message GetBookRequest {
  string book_id = 1;
}

message GetShelfRequest {
  string name = 1;
}

message Book {
  string name = 1;
}

message Shelf {
  string name = 1;
}
`)

	rule := NewGetRequestNameRule()
	problems := checkNode(t, rule, model, ctx, "library.v1.LibraryService.GetBook")
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Message, "`name` field")

	assert.Empty(t, checkNode(t, rule, model, ctx, "library.v1.LibraryService.GetShelf"))
}

func TestListRules(t *testing.T) {
	model, ctx := loadModel(t, `syntax = "proto3";
package library.v1;

service LibraryService {
  rpc ListBooks(ListBooksRequest) returns (ListBooksResponse);
}

message ListBooksRequest {
  string parent = 1;
}

message ListBooksResponse {
  repeated Book books = 1;
}

message Book {
  string name = 1;
}
`)

	reqProblems := checkNode(t, NewListRequestShapeRule(), model, ctx, "library.v1.LibraryService.ListBooks")
	require.Len(t, reqProblems, 2)
	assert.Contains(t, reqProblems[0].Message, "page_size")
	assert.Contains(t, reqProblems[1].Message, "page_token")

	respProblems := checkNode(t, NewListResponseShapeRule(), model, ctx, "library.v1.LibraryService.ListBooks")
	require.Len(t, respProblems, 1)
	assert.Contains(t, respProblems[0].Message, "next_page_token")
}

func TestUpdateRequestMaskRule(t *testing.T) {
	model, ctx := loadModel(t, `syntax = "proto3";
package library.v1;

import "google/protobuf/field_mask.proto";

service LibraryService {
  rpc UpdateBook(UpdateBookRequest) returns (Book);
  rpc UpdateShelf(UpdateShelfRequest) returns (Shelf);
}

message UpdateBookRequest {
  Book book = 1;
}

message UpdateShelfRequest {
  Shelf shelf = 1;
  google.protobuf.FieldMask update_mask = 2;
}

message Book {
  string name = 1;
}

message Shelf {
  string name = 1;
}
`)

	rule := NewUpdateRequestMaskRule()
	require.Len(t, checkNode(t, rule, model, ctx, "library.v1.LibraryService.UpdateBook"), 1)
	assert.Empty(t, checkNode(t, rule, model, ctx, "library.v1.LibraryService.UpdateShelf"))
}

func TestDeleteResponseRule(t *testing.T) {
	model, ctx := loadModel(t, `syntax = "proto3";
package library.v1;

import "google/protobuf/empty.proto";

service LibraryService {
  rpc DeleteBook(DeleteBookRequest) returns (google.protobuf.Empty);
  rpc DeleteShelf(DeleteShelfRequest) returns (ShelfGone);
}

message DeleteBookRequest {
  string name = 1;
}

message DeleteShelfRequest {
  string name = 1;
}

message ShelfGone {
  string name = 1;
}
`)

	rule := NewDeleteResponseRule()
	assert.Empty(t, checkNode(t, rule, model, ctx, "library.v1.LibraryService.DeleteBook"))

	problems := checkNode(t, rule, model, ctx, "library.v1.LibraryService.DeleteShelf")
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Message, "ShelfGone")
}

func TestNamingRules(t *testing.T) {
	model, ctx := loadModel(t, `syntax = "proto3";
package library.v1;

service library_service {
  rpc Frobnicate(Widget) returns (Widget);
}

message Widget {
  string DisplayName = 1;

  enum kind {
    KIND_UNSPECIFIED = 0;
    plain = 1;
  }
}
`)

	require.Len(t, checkNode(t, NewServiceNamingRule(), model, ctx, "library.v1.library_service"), 1)
	assert.Empty(t, checkNode(t, NewMessageNamingRule(), model, ctx, "library.v1.Widget"))
	require.Len(t, checkNode(t, NewFieldNamingRule(), model, ctx, "library.v1.Widget.DisplayName"), 1)
	require.Len(t, checkNode(t, NewEnumNamingRule(), model, ctx, "library.v1.Widget.kind"), 1)
	require.Len(t, checkNode(t, NewEnumValueNamingRule(), model, ctx, "library.v1.Widget.kind.plain"), 1)
	assert.Empty(t, checkNode(t, NewEnumValueNamingRule(), model, ctx, "library.v1.Widget.kind.KIND_UNSPECIFIED"))
}

func TestEnumZeroValueRule(t *testing.T) {
	model, ctx := loadModel(t, `syntax = "proto3";
package library.v1;

message Book {
  enum State {
    STATE_UNSPECIFIED = 0;
    ACTIVE = 1;
  }
  enum Format {
    HARDCOVER = 0;
  }
  State state = 1;
  Format format = 2;
}
`)

	rule := NewEnumZeroValueRule()
	assert.Empty(t, checkNode(t, rule, model, ctx, "library.v1.Book.State"))

	problems := checkNode(t, rule, model, ctx, "library.v1.Book.Format")
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Message, "UNSPECIFIED")
	assert.Contains(t, problems[0].Suggestion, "FORMAT_UNSPECIFIED")
}

func TestFieldBehaviorRules(t *testing.T) {
	model, ctx := loadModel(t, `syntax = "proto3";
package library.v1;

import "google/api/field_behavior.proto";

message Book {
  string name = 1 [(google.api.field_behavior) = REQUIRED];
  string etag = 2 [
    (google.api.field_behavior) = OUTPUT_ONLY,
    (google.api.field_behavior) = REQUIRED
  ];
}
`)

	conflicts := checkNode(t, NewOutputOnlyConflictRule(), model, ctx, "library.v1.Book.etag")
	require.Len(t, conflicts, 1)
	assert.Contains(t, conflicts[0].Message, "OUTPUT_ONLY")

	nameProblems := checkNode(t, NewResourceNameBehaviorRule(), model, ctx, "library.v1.Book.name")
	require.Len(t, nameProblems, 1)
	assert.Contains(t, nameProblems[0].Suggestion, "IDENTIFIER")
}

func TestMethodVerb(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"GetBook", "Get"},
		{"ListBooks", "List"},
		{"BatchGetBooks", "BatchGet"},
		{"Getaway", ""},
		{"TranslateText", ""},
		{"Get", "Get"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, methodVerb(tc.name), tc.name)
	}
}

func TestRegisterDefaultRules_UniqueIDs(t *testing.T) {
	c := Default()
	assert.Greater(t, c.Len(), 10)

	// Re-registering the same set must collide on every id.
	assert.Panics(t, func() { RegisterDefaultRules(c) })
}

func TestRequestNamingRule(t *testing.T) {
	model, ctx := loadModel(t, `syntax = "proto3";
package library.v1;

service LibraryService {
  rpc GetBook(GetBookRequest) returns (Book);
  rpc UpdateBook(Book) returns (Book);
}

message GetBookRequest {
  string name = 1;
}

message Book {
  string name = 1;
}
`)

	assert.Empty(t, checkNode(t, NewRequestNamingRule(), model, ctx, "library.v1.LibraryService.GetBook"))

	problems := checkNode(t, NewRequestNamingRule(), model, ctx, "library.v1.LibraryService.UpdateBook")
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Message, `"UpdateBookRequest"`)
}

func TestSynchronousResponseRule(t *testing.T) {
	// Built as a descriptor set so the google.longrunning reference
	// resolves without compiling operations.proto.
	set := &descriptorpb.FileDescriptorSet{
		File: []*descriptorpb.FileDescriptorProto{{
			Name:    proto.String("library.proto"),
			Package: proto.String("library.v1"),
			Service: []*descriptorpb.ServiceDescriptorProto{{
				Name: proto.String("LibraryService"),
				Method: []*descriptorpb.MethodDescriptorProto{
					{
						Name:       proto.String("GetBook"),
						InputType:  proto.String(".library.v1.GetBookRequest"),
						OutputType: proto.String(".google.longrunning.Operation"),
					},
					{
						Name:       proto.String("ListBooks"),
						InputType:  proto.String(".library.v1.ListBooksRequest"),
						OutputType: proto.String(".library.v1.ListBooksResponse"),
					},
					{
						Name:       proto.String("ImportBooks"),
						InputType:  proto.String(".library.v1.ImportBooksRequest"),
						OutputType: proto.String(".google.longrunning.Operation"),
					},
				},
			}},
			MessageType: []*descriptorpb.DescriptorProto{
				{Name: proto.String("GetBookRequest")},
				{Name: proto.String("ListBooksRequest")},
				{Name: proto.String("ListBooksResponse")},
				{Name: proto.String("ImportBooksRequest")},
			},
		}},
	}
	data, err := proto.Marshal(set)
	require.NoError(t, err)
	model, err := schema.LoadSet("library.binpb", data)
	require.NoError(t, err)
	ctx := &catalog.Context{Model: model}

	problems := checkNode(t, NewSynchronousResponseRule(), model, ctx, "library.v1.LibraryService.GetBook")
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Message, "synchronously")

	assert.Empty(t, checkNode(t, NewSynchronousResponseRule(), model, ctx, "library.v1.LibraryService.ListBooks"))

	// Non-retrieval methods may return Operation.
	node, _ := model.Node("library.v1.LibraryService.ImportBooks")
	assert.False(t, NewSynchronousResponseRule().Applies(node, ctx))
}
