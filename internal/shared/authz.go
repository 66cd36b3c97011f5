package shared

// Module names used in permission strings ("<module>.<verb>").
const (
	ModuleParts      = "parts"
	ModulePurchasing = "purchasing"
	ModuleAccounting = "accounting"
	ModuleResources  = "resources"
)

// Verbs recognised by the permission gate.
const (
	VerbView   = "view"
	VerbCreate = "create"
	VerbUpdate = "update"
	VerbDelete = "delete"
)

// Roles carried by a principal in addition to verb grants.
const (
	RoleEmployee = "employee"
	RoleSupplier = "supplier"
	RoleCustomer = "customer"
)

// Scope composes the permission name for a verb on a module.
func Scope(module, verb string) string {
	return module + "." + verb
}

// AllScopes enumerates every verb x module permission, for seeding.
func AllScopes() []string {
	modules := []string{ModuleParts, ModulePurchasing, ModuleAccounting, ModuleResources}
	verbs := []string{VerbView, VerbCreate, VerbUpdate, VerbDelete}
	scopes := make([]string, 0, len(modules)*len(verbs))
	for _, m := range modules {
		for _, v := range verbs {
			scopes = append(scopes, Scope(m, v))
		}
	}
	return scopes
}
