package buildsignals

import "fmt"

// Kind identifies one of the recognized NodeKey variants.
type Kind uint8

const (
	KindBuildKey Kind = iota
	KindAnalysisKey
	KindEnsureProjectedArtifactKey
	KindEnsureTransitiveSetProjectionKey
	KindDeferredCompute
	KindDeferredResolve
	KindConfiguredTargetNodeKey
	KindInterpreterResultsKey
	KindMaterialization
)

func (k Kind) String() string {
	switch k {
	case KindBuildKey:
		return "BuildKey"
	case KindAnalysisKey:
		return "AnalysisKey"
	case KindEnsureProjectedArtifactKey:
		return "EnsureProjectedArtifactKey"
	case KindEnsureTransitiveSetProjectionKey:
		return "EnsureTransitiveSetProjectionKey"
	case KindDeferredCompute:
		return "DeferredCompute"
	case KindDeferredResolve:
		return "DeferredResolve"
	case KindConfiguredTargetNodeKey:
		return "ConfiguredTargetNodeKey"
	case KindInterpreterResultsKey:
		return "InterpreterResultsKey"
	case KindMaterialization:
		return "Materialization"
	default:
		return "Unknown"
	}
}

// PackageLabel identifies a package that can be loaded.
type PackageLabel string

// TargetLabel identifies a configured build or analysis target.
type TargetLabel string

// ActionKeyID identifies the action backing a BuildKey: the target that
// owns it plus a disambiguating identifier (category/index) within that
// target, mirroring how Buck2's ActionKey pairs an owner with an action
// index.
type ActionKeyID struct {
	Owner      TargetLabel
	Identifier string
}

// ArtifactID identifies a build artifact, keyed by the target that
// produced it and its output path.
type ArtifactID struct {
	Owner TargetLabel
	Path  string
}

// NodeKey is a tagged identifier for one of the nine recognized key
// kinds. Two NodeKeys are equal iff their Kind and payload are equal, so
// NodeKey is safe to use as a map key.
type NodeKey struct {
	kind    Kind
	payload interface{}
}

// Kind reports which variant this NodeKey carries.
func (k NodeKey) Kind() Kind { return k.kind }

// Equal reports whether k and other identify the same key. It exists
// so that cmp.Diff (used in tests) compares NodeKeys by their exported
// notion of identity instead of panicking on the unexported payload
// field.
func (k NodeKey) Equal(other NodeKey) bool { return k == other }

// BuildKey constructs a NodeKey identifying an action execution.
func BuildKey(id ActionKeyID) NodeKey { return NodeKey{kind: KindBuildKey, payload: id} }

// AsBuildKey returns the ActionKeyID if k is a BuildKey.
func (k NodeKey) AsBuildKey() (ActionKeyID, bool) {
	id, ok := k.payload.(ActionKeyID)
	return id, ok && k.kind == KindBuildKey
}

// AnalysisKey constructs a NodeKey identifying a target analysis.
func AnalysisKey(label TargetLabel) NodeKey { return NodeKey{kind: KindAnalysisKey, payload: label} }

// AsAnalysisKey returns the TargetLabel if k is an AnalysisKey.
func (k NodeKey) AsAnalysisKey() (TargetLabel, bool) {
	l, ok := k.payload.(TargetLabel)
	return l, ok && k.kind == KindAnalysisKey
}

// EnsureProjectedArtifactKey constructs a NodeKey for a projected
// artifact resolution.
func EnsureProjectedArtifactKey(id string) NodeKey {
	return NodeKey{kind: KindEnsureProjectedArtifactKey, payload: id}
}

// EnsureTransitiveSetProjectionKey constructs a NodeKey for a transitive
// set projection.
func EnsureTransitiveSetProjectionKey(id string) NodeKey {
	return NodeKey{kind: KindEnsureTransitiveSetProjectionKey, payload: id}
}

// DeferredComputeKey constructs a NodeKey for a deferred computation.
func DeferredComputeKey(id string) NodeKey { return NodeKey{kind: KindDeferredCompute, payload: id} }

// DeferredResolveKey constructs a NodeKey for a deferred resolution.
func DeferredResolveKey(id string) NodeKey { return NodeKey{kind: KindDeferredResolve, payload: id} }

// ConfiguredTargetNodeKey constructs a NodeKey for a configured target
// node lookup.
func ConfiguredTargetNodeKey(label TargetLabel) NodeKey {
	return NodeKey{kind: KindConfiguredTargetNodeKey, payload: label}
}

// InterpreterResultsKey constructs a NodeKey for a package load.
func InterpreterResultsKey(pkg PackageLabel) NodeKey {
	return NodeKey{kind: KindInterpreterResultsKey, payload: pkg}
}

// AsInterpreterResultsKey returns the PackageLabel if k is an
// InterpreterResultsKey.
func (k NodeKey) AsInterpreterResultsKey() (PackageLabel, bool) {
	p, ok := k.payload.(PackageLabel)
	return p, ok && k.kind == KindInterpreterResultsKey
}

// MaterializationKey constructs the synthetic NodeKey for placing a
// built artifact at its final location. It is never produced by the
// build engine; the receiver synthesizes it from FinalMaterialization
// signals.
func MaterializationKey(artifact ArtifactID) NodeKey {
	return NodeKey{kind: KindMaterialization, payload: artifact}
}

// AsMaterializationKey returns the ArtifactID if k is a
// MaterializationKey.
func (k NodeKey) AsMaterializationKey() (ArtifactID, bool) {
	a, ok := k.payload.(ArtifactID)
	return a, ok && k.kind == KindMaterialization
}

func (k NodeKey) String() string {
	switch v := k.payload.(type) {
	case ActionKeyID:
		return fmt.Sprintf("BuildKey(%s %s)", v.Owner, v.Identifier)
	case ArtifactID:
		return fmt.Sprintf("Materialization(%s %s)", v.Owner, v.Path)
	default:
		return fmt.Sprintf("%s(%v)", k.kind, v)
	}
}

// EngineKey is the opaque key type the build engine hands to the
// ActivationTracker. The engine's key system is heterogeneous and this
// package does not know most of its kinds; EngineKey implementations
// are asked to self-classify rather than being inspected by reflection.
type EngineKey interface {
	// AsNodeKey attempts to project this engine key onto one of the nine
	// recognized NodeKey kinds. ok is false for engine keys this package
	// does not track, which the boundary filter then drops silently.
	AsNodeKey() (key NodeKey, ok bool)
}

// filterKeys projects a slice of opaque engine keys through the
// boundary, dropping any that are not recognized. This is the sole
// permitted form of lossy edge handling: an unrecognized dependency
// simply does not become an edge.
func filterKeys(keys []EngineKey) []NodeKey {
	out := make([]NodeKey, 0, len(keys))
	for _, k := range keys {
		if nk, ok := k.AsNodeKey(); ok {
			out = append(out, nk)
		}
	}
	return out
}

// filteredSummaryKind reports whether entries with this key kind are
// omitted from the final summary report (see describeEntry in
// summary.go): these kinds carry no externally meaningful identity once
// the build is done.
func filteredSummaryKind(k Kind) bool {
	switch k {
	case KindEnsureProjectedArtifactKey,
		KindEnsureTransitiveSetProjectionKey,
		KindDeferredCompute,
		KindDeferredResolve,
		KindConfiguredTargetNodeKey:
		return true
	default:
		return false
	}
}
