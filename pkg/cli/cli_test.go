package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/apilint/pkg/catalog"
	"github.com/platinummonkey/apilint/pkg/config"
	"github.com/platinummonkey/apilint/pkg/engine"
	"github.com/platinummonkey/apilint/pkg/report"
	"github.com/platinummonkey/apilint/pkg/schema"
)

func TestParseFailSeverity(t *testing.T) {
	cases := map[string]catalog.Severity{
		"must":   catalog.SeverityMust,
		"should": catalog.SeverityShould,
		"may":    catalog.SeverityMay,
	}
	for in, want := range cases {
		got, err := parseFailSeverity(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := parseFailSeverity("warning")
	assert.Error(t, err)
}

func TestLoadCatalogAndConfig_Defaults(t *testing.T) {
	cat, cfg, err := loadCatalogAndConfig("", nil)
	require.NoError(t, err)
	assert.Greater(t, cat.Len(), 0)
	assert.Empty(t, cfg.Rules)
}

func TestLoadCatalogAndConfig_DisableFlags(t *testing.T) {
	_, cfg, err := loadCatalogAndConfig("", []string{"method-http-binding", "field-name-snake-case"})
	require.NoError(t, err)
	assert.True(t, cfg.Rules["method-http-binding"].Disabled())
	assert.True(t, cfg.Rules["field-name-snake-case"].Disabled())
}

func TestLoadCatalogAndConfig_UnknownRuleIsConfigError(t *testing.T) {
	_, _, err := loadCatalogAndConfig("", []string{"no-such-rule"})
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, ExitConfig, exitErr.Code)

	var unknown *config.UnknownRuleError
	assert.True(t, errors.As(err, &unknown))
}

func TestLoadCatalogAndConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apilint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  list-response-shape:
    enabled: false
    path: library.v1.LibraryService
`), 0o644))

	_, cfg, err := loadCatalogAndConfig(path, nil)
	require.NoError(t, err)

	s := cfg.Rules["list-response-shape"]
	assert.True(t, s.Disabled())
	assert.Equal(t, "library.v1.LibraryService", s.Path)
}

func TestLoadCatalogAndConfig_MissingFile(t *testing.T) {
	_, _, err := loadCatalogAndConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, ExitConfig, exitErr.Code)
}

func TestExitError(t *testing.T) {
	inner := errors.New("bad flag")
	err := exitErrorf(ExitConfig, "startup: %w", inner)
	assert.Equal(t, ExitConfig, err.Code)
	assert.Equal(t, "startup: bad flag", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestStringList(t *testing.T) {
	var list stringList
	require.NoError(t, list.Set("a"))
	require.NoError(t, list.Set("b"))
	assert.Equal(t, "a,b", list.String())
	assert.Error(t, list.Set(""))
}

func TestClassifyRunError(t *testing.T) {
	// A deadline or signal firing during model load surfaces as a
	// ParseError wrapping the context error; the run is cancelled, not
	// malformed.
	cancelled := &schema.ParseError{File: "library.proto", Reason: "compilation failed", Err: context.Canceled}
	err := classifyRunError(cancelled)
	assert.Equal(t, ExitIncomplete, err.Code)

	err = classifyRunError(fmt.Errorf("lint: %w", context.DeadlineExceeded))
	assert.Equal(t, ExitIncomplete, err.Code)

	genuine := &schema.ParseError{File: "library.proto", Reason: "unresolved reference"}
	err = classifyRunError(genuine)
	assert.Equal(t, ExitConfig, err.Code)
	assert.Contains(t, err.Error(), "unresolved reference")

	err = classifyRunError(errors.New("catalog empty"))
	assert.Equal(t, ExitConfig, err.Code)
}

func TestRenderResult_ReplaysCachedFindings(t *testing.T) {
	result := &engine.Result{
		RunID: "run-1",
		Findings: []report.Finding{{
			RuleID:   "method-http-binding",
			Path:     "library.v1.LibraryService.GetBook",
			Severity: catalog.SeverityMust,
			Category: report.CategoryViolation,
			Message:  "method \"GetBook\" has no google.api.http binding",
		}},
	}
	result.Summary = report.Summarize(result.Findings)

	var buf bytes.Buffer
	require.NoError(t, renderResult(&buf, result))
	assert.Contains(t, buf.String(), "library.v1.LibraryService.GetBook: MUST method-http-binding")
	assert.Contains(t, buf.String(), "1 findings")
}
