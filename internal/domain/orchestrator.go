package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"gooze.dev/pkg/rulemig/internal/adapter"
	"gooze.dev/pkg/rulemig/internal/javaast"
	m "gooze.dev/pkg/rulemig/internal/model"
	"gooze.dev/pkg/rulemig/internal/rewrite"
)

// ErrUnresolvedBinding aborts a match whose type cannot be resolved.
var ErrUnresolvedBinding = errors.New("unresolved type binding")

// Orchestrator applies one match: it classifies the match, walks the
// resource hierarchy, lifts, adapts and injects per declaration, and
// returns the change units of every file other than the primary one.
type Orchestrator interface {
	Apply(ctx context.Context, primary *rewrite.Session, match m.Match) ([]m.ChangeUnit, error)
}

// Option configures an Orchestrator.
type Option func(*orchestrator)

// WithLogger routes diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCollisionPolicy sets how lifted type name collisions are handled.
func WithCollisionPolicy(policy CollisionPolicy) Option {
	return func(o *orchestrator) {
		o.policy = policy
	}
}

type orchestrator struct {
	model  adapter.SourceModel
	fs     adapter.SourceFSAdapter
	logger *slog.Logger
	policy CollisionPolicy

	facts     *SyntaxFacts
	lifter    *AnonymousClassLifter
	lifecycle *LifecycleMethodAdapter
	injector  *InterfaceAnnotationInjector
}

// NewOrchestrator constructs an Orchestrator that resolves types through
// model and reads secondary files through fs.
func NewOrchestrator(model adapter.SourceModel, fs adapter.SourceFSAdapter, opts ...Option) Orchestrator {
	o := &orchestrator{
		model:  model,
		fs:     fs,
		logger: slog.Default(),
		policy: CollisionSuffix,
	}

	for _, opt := range opts {
		opt(o)
	}

	o.facts = NewSyntaxFacts(model)
	o.lifter = NewAnonymousClassLifter(o.policy, o.logger)
	o.lifecycle = NewLifecycleMethodAdapter(o.logger)
	o.injector = NewInterfaceAnnotationInjector()

	return o
}

func (o *orchestrator) Apply(ctx context.Context, primary *rewrite.Session, match m.Match) ([]m.ChangeUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if match.Start.IsZero() {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedBinding, match.Name)
	}

	if !primary.Once("match:" + strconv.Itoa(matchOffset(match))) {
		return nil, nil
	}

	logger := o.logger.With("file", match.File, "match", match.Name, "shape", match.Shape)
	scope := match.Scope()
	aggregator := NewChangeSetAggregator(o.fs, primary, logger)

	walkFrom := match.Start

	switch match.Shape {
	case m.ShapeAnonymousField:
		if err := o.liftField(primary, match, scope); err != nil {
			logger.Error("Failed to lift anonymous resource", "error", err)
			return nil, fmt.Errorf("failed to lift %s: %w", match.Name, err)
		}

		if match.Start.QualifiedName == m.ExternalResource {
			walkFrom = m.TypeBinding{}
		}

		o.migrateFieldAnnotations(primary, match.Field)
	case m.ShapeNamedField, m.ShapeClassField:
		o.retypeField(primary, match.Field)
		o.migrateFieldAnnotations(primary, match.Field)
	case m.ShapeClass:
		scope = m.InstanceScope
	}

	walker := NewHierarchyWalker(o.model, primary.Unit(), logger)

	for _, entry := range walker.Walk(ctx, walkFrom) {
		if !entry.Resolved() {
			logger.Warn("Skipping unresolved hierarchy level", "type", entry.Binding.QualifiedName)
			continue
		}

		session := aggregator.Session(entry.Unit)
		if err := o.migrateDeclaration(session, entry, scope, logger); err != nil {
			logger.Error("Failed to migrate declaration", "type", entry.Binding.QualifiedName, "error", err)
		}
	}

	units := aggregator.Flush()

	logger.Debug("Applied match", "secondary", len(units))

	return units, nil
}

func (o *orchestrator) liftField(session *rewrite.Session, match m.Match, scope m.Scope) error {
	extends := ""
	if match.Start.QualifiedName != m.ExternalResource {
		extends = match.Field.Creation.Type.Text
	}

	_, err := o.lifter.Lift(session, match.Field, scope, extends)

	return err
}

// retypeField narrows a field declared as the resource base to the type it
// is initialized with.
func (o *orchestrator) retypeField(session *rewrite.Session, field *javaast.FieldDecl) {
	creation := field.Creation
	if creation == nil || creation.Body != nil || creation.Type == nil {
		return
	}

	declared, ok := o.model.ResolveType(session.Unit(), field.Owner, field.Type)
	if !ok || declared.QualifiedName != m.ExternalResource {
		return
	}

	session.Replace(field.Type.Span, creation.Type.Text)
	session.RemoveImport(m.ExternalResource)
}

func (o *orchestrator) migrateFieldAnnotations(session *rewrite.Session, field *javaast.FieldDecl) {
	unit := session.Unit()
	mods := session.Modifiers(field.Modifiers)

	for _, marker := range []string{m.RuleAnnotation, m.ClassRule} {
		if i := MarkerIndex(unit, field.Modifiers, marker); i >= 0 {
			mods.Remove(i)
			session.RemoveImport(marker)
		}
	}

	o.injector.AddAnnotation(session, field.Modifiers, m.RegisterExtension)
}

func (o *orchestrator) migrateDeclaration(session *rewrite.Session, entry *HierarchyEntry, scope m.Scope, logger *slog.Logger) error {
	key := "decl:" + strconv.Itoa(entry.Decl.Span.Start)
	if !session.Once(key) {
		if session.Once(key + ":" + scope.Name) {
			logger.Warn("Declaration already migrated for another scope", "type", entry.Binding.QualifiedName, "scope", scope.Name)
		}

		return nil
	}

	session.Once(key + ":" + scope.Name)

	direct := entry.DirectlyExtendsBase()

	adapted, err := o.lifecycle.Adapt(session, entry.Decl, scope, direct)
	if err != nil {
		return err
	}

	if direct {
		session.RemoveSuperclass(entry.Decl)
		session.RemoveImport(m.ExternalResource)

		for _, callback := range scope.CallbackImports() {
			o.injector.AddInterface(session, entry.Decl, callback)
		}
	}

	logger.Debug("Migrated declaration", "type", entry.Binding.QualifiedName, "hooks", adapted, "direct", direct)

	return nil
}

func matchOffset(match m.Match) int {
	if match.Field != nil {
		return match.Field.Span.Start
	}

	if match.Type != nil {
		return match.Type.Span.Start
	}

	return -1
}
