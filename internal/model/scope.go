package model

// Qualified names of the JUnit types involved in the migration.
const (
	ExternalResource = "org.junit.rules.ExternalResource"
	RuleAnnotation   = "org.junit.Rule"
	ClassRule        = "org.junit.ClassRule"
	TestNameRule     = "org.junit.rules.TestName"
	TemporaryFolder  = "org.junit.rules.TemporaryFolder"

	RegisterExtension = "org.junit.jupiter.api.extension.RegisterExtension"
	ExtensionContext  = "org.junit.jupiter.api.extension.ExtensionContext"
	ExtensionPackage  = "org.junit.jupiter.api.extension"

	// Throwable is the exception stripped from adapted hook signatures.
	Throwable = "Throwable"
)

// Legacy hook names.
const (
	HookBefore = "before"
	HookAfter  = "after"
)

// Scope is one row of the strategy table: it tells the engine which hook
// pair and which callback interfaces a rule of that scope migrates to.
type Scope struct {
	Name        string
	ClassScoped bool
	Before      string
	After       string
	Callbacks   [2]string
}

var (
	// InstanceScope is used for @Rule fields and standalone classes.
	InstanceScope = Scope{
		Name:      "instance",
		Before:    "beforeEach",
		After:     "afterEach",
		Callbacks: [2]string{"BeforeEachCallback", "AfterEachCallback"},
	}

	// ClassScope is used for @ClassRule fields.
	ClassScope = Scope{
		Name:        "class",
		ClassScoped: true,
		Before:      "beforeAll",
		After:       "afterAll",
		Callbacks:   [2]string{"BeforeAllCallback", "AfterAllCallback"},
	}
)

// ScopeFor picks the strategy row for a match.
func ScopeFor(classScoped bool) Scope {
	if classScoped {
		return ClassScope
	}

	return InstanceScope
}

// NewHook maps a legacy hook name onto the scope's callback method name.
func (s Scope) NewHook(legacy string) (string, bool) {
	switch legacy {
	case HookBefore:
		return s.Before, true
	case HookAfter:
		return s.After, true
	}

	return "", false
}

// CallbackImports returns the qualified names of the scope's callback interfaces.
func (s Scope) CallbackImports() []string {
	return []string{
		ExtensionPackage + "." + s.Callbacks[0],
		ExtensionPackage + "." + s.Callbacks[1],
	}
}
