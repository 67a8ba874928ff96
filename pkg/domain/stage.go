package domain

// Mode selects the control flow strategy for a stage.
type Mode string

const (
	// ModeDeterministic runs every ability in configured order.
	ModeDeterministic Mode = "deterministic"
	// ModeConditional runs the stage only if its condition holds.
	ModeConditional Mode = "conditional"
	// ModeNonDeterministic branches on the evaluator score.
	ModeNonDeterministic Mode = "non-deterministic"
)

// Namespace partitions ability names into independent resolution spaces.
// The same name may be registered under both namespaces with different
// implementations.
type Namespace string

const (
	// NamespaceCommon holds abilities that run fully in-process.
	NamespaceCommon Namespace = "common"
	// NamespaceAtlas holds abilities that stand in for external systems.
	NamespaceAtlas Namespace = "atlas"
)

// Role tags an ability spec inside a non-deterministic stage. Specs
// without a recognized role are never executed in that mode.
type Role string

const (
	RoleEvaluator  Role = "evaluator"
	RoleEscalation Role = "escalation"
	RoleRecord     Role = "record"
)

// AbilitySpec is one configured ability invocation. Abilities carry no
// parameters; they read and write only through the execution state.
type AbilitySpec struct {
	Name      string    `json:"name" mapstructure:"name"`
	Namespace Namespace `json:"namespace" mapstructure:"namespace"`
	Role      Role      `json:"role,omitempty" mapstructure:"role"`
}

// Stage is a named configuration unit: an ordered list of ability
// specs plus the execution mode. Immutable once loaded.
type Stage struct {
	Name      string        `json:"name" mapstructure:"name"`
	Mode      Mode          `json:"mode" mapstructure:"mode"`
	Condition string        `json:"condition,omitempty" mapstructure:"condition"`
	Abilities []AbilitySpec `json:"abilities" mapstructure:"abilities"`
}

// Pipeline is the ordered stage list one engine instance executes.
type Pipeline struct {
	Stages []Stage `json:"stages" mapstructure:"stages"`
}
