package rules

import "github.com/platinummonkey/apilint/pkg/catalog"

// RegisterDefaultRules registers the built-in rule set. Registration
// order here fixes the catalog order reported by `apilint rules` and the
// final sort tie-break.
func RegisterDefaultRules(c *catalog.Catalog) {
	// Method shape rules.
	c.MustRegister(NewHTTPBindingRule())
	c.MustRegister(NewStandardMethodVerbRule())
	c.MustRegister(NewRequestNamingRule())
	c.MustRegister(NewSynchronousResponseRule())
	c.MustRegister(NewGetRequestNameRule())
	c.MustRegister(NewGetResponseResourceRule())
	c.MustRegister(NewListRequestShapeRule())
	c.MustRegister(NewListResponseShapeRule())
	c.MustRegister(NewUpdateRequestMaskRule())
	c.MustRegister(NewDeleteResponseRule())

	// Naming rules.
	c.MustRegister(NewServiceNamingRule())
	c.MustRegister(NewMessageNamingRule())
	c.MustRegister(NewFieldNamingRule())
	c.MustRegister(NewEnumNamingRule())
	c.MustRegister(NewEnumValueNamingRule())
	c.MustRegister(NewEnumZeroValueRule())

	// Field behavior rules.
	c.MustRegister(NewOutputOnlyConflictRule())
	c.MustRegister(NewResourceNameBehaviorRule())
}

// Default returns a catalog preloaded with the built-in rules.
func Default() *catalog.Catalog {
	c := catalog.New()
	RegisterDefaultRules(c)
	return c
}
