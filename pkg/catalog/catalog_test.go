package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/apilint/pkg/schema"
)

const catalogTestProto = `syntax = "proto3";

package test.v1;

service Widgets {
  rpc GetWidget(GetWidgetRequest) returns (Widget);
}

message GetWidgetRequest {
  string name = 1;
}

message Widget {
  string name = 1;
}
`

func testModel(t *testing.T) *schema.Model {
	t.Helper()
	model, err := schema.LoadSource(context.Background(), "widgets.proto", catalogTestProto)
	require.NoError(t, err)
	return model
}

func ruleWithID(id string, kinds ...schema.Kind) *Rule {
	return &Rule{
		ID:    id,
		Title: "test rule " + id,
		Kinds: kinds,
		Check: func(schema.Node, *Context) []Problem {
			return nil
		},
		Severity: SeverityShould,
	}
}

func TestCatalog_RegisterRejectsDuplicateID(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(ruleWithID("a", schema.KindMethod)))

	err := c.Register(ruleWithID("a", schema.KindService))
	var dup *DuplicateIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.ID)
	assert.Equal(t, 1, c.Len())
}

func TestCatalog_RegisterRejectsIncompleteRules(t *testing.T) {
	c := New()
	assert.Error(t, c.Register(&Rule{Check: func(schema.Node, *Context) []Problem { return nil }}))
	assert.Error(t, c.Register(&Rule{ID: "no-check"}))
}

func TestCatalog_AllPreservesRegistrationOrder(t *testing.T) {
	c := New()
	for _, id := range []string{"zebra", "alpha", "middle"} {
		require.NoError(t, c.Register(ruleWithID(id, schema.KindMethod)))
	}

	var got []string
	for _, r := range c.All() {
		got = append(got, r.ID)
	}
	assert.Equal(t, []string{"zebra", "alpha", "middle"}, got)
}

func TestCatalog_ApplicableRulesFiltersByKind(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(ruleWithID("method-only", schema.KindMethod)))
	require.NoError(t, c.Register(ruleWithID("service-only", schema.KindService)))
	require.NoError(t, c.Register(ruleWithID("both", schema.KindMethod, schema.KindService)))

	model := testModel(t)
	ctx := &Context{Model: model}

	method, _ := model.Node("test.v1.Widgets.GetWidget")
	var ids []string
	for _, r := range c.ApplicableRules(method, ctx) {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"method-only", "both"}, ids)
}

func TestCatalog_ApplicableRulesHonorsPredicate(t *testing.T) {
	c := New()
	rule := ruleWithID("gets-only", schema.KindMethod)
	rule.Applies = func(n schema.Node, _ *Context) bool {
		return n.Name() == "GetWidget"
	}
	require.NoError(t, c.Register(rule))

	model := testModel(t)
	ctx := &Context{Model: model}

	method, _ := model.Node("test.v1.Widgets.GetWidget")
	assert.Len(t, c.ApplicableRules(method, ctx), 1)

	svc, _ := model.Node("test.v1.Widgets")
	assert.Empty(t, c.ApplicableRules(svc, ctx))
}

func TestSeverity_Rank(t *testing.T) {
	assert.Greater(t, SeverityMust.Rank(), SeverityShould.Rank())
	assert.Greater(t, SeverityShould.Rank(), SeverityMay.Rank())
	assert.Greater(t, SeverityMay.Rank(), Severity("bogus").Rank())
}

func TestCatalog_GetAndHas(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(ruleWithID("known", schema.KindField)))

	r, ok := c.Get("known")
	require.True(t, ok)
	assert.Equal(t, "known", r.ID)
	assert.True(t, c.Has("known"))
	assert.False(t, c.Has("unknown"))
}
