package shared_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meridian-erp/meridian/internal/shared"
	_ "github.com/meridian-erp/meridian/testing"
)

func TestScopeComposesPermissionName(t *testing.T) {
	assert.Equal(t, "parts.view", shared.Scope(shared.ModuleParts, shared.VerbView))
	assert.Equal(t, "purchasing.delete", shared.Scope(shared.ModulePurchasing, shared.VerbDelete))
}

func TestAllScopesCoversEveryModuleAndVerb(t *testing.T) {
	scopes := shared.AllScopes()
	assert.Len(t, scopes, 16)

	for _, m := range []string{shared.ModuleParts, shared.ModulePurchasing, shared.ModuleAccounting, shared.ModuleResources} {
		for _, v := range []string{shared.VerbView, shared.VerbCreate, shared.VerbUpdate, shared.VerbDelete} {
			assert.Contains(t, scopes, shared.Scope(m, v))
		}
	}
}
