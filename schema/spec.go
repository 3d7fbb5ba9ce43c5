package schema

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownFunction is reported for function names no registry knows about.
var ErrUnknownFunction = errors.New("unknown function")

// FunctionSpec is a function-call node: a function name plus arguments that
// are themselves specs or plain values. Specs are never mutated by the engine.
//
// Anywhere the engine accepts a spec it takes an `any`, which is either a call
// node (FunctionSpec, *FunctionSpec, or a decoded JSON object with a string
// "functionName") or an already evaluated value.
type FunctionSpec struct {
	FunctionName      FunctionName   `json:"functionName" yaml:"functionName"`
	FunctionArguments map[string]any `json:"functionArguments,omitempty" yaml:"functionArguments,omitempty"`
}

// Call builds a FunctionSpec.
func Call(name FunctionName, args map[string]any) FunctionSpec {
	return FunctionSpec{FunctionName: name, FunctionArguments: args}
}

// Canonical resolves legacy aliases.
func (n FunctionName) Canonical() FunctionName {
	if canonical, ok := FunctionAliases[n]; ok {
		return canonical
	}
	return n
}

// IsKnown reports whether any registry implements the function.
func (n FunctionName) IsKnown() bool {
	canonical := n.Canonical()
	_, series := ValidSeriesFunctions[canonical]
	_, transform := ValidTransformFunctions[canonical]
	return series || transform
}

// AsFunctionSpec returns the call node held by v, if v is one.
func AsFunctionSpec(v any) (FunctionSpec, bool) {
	switch s := v.(type) {
	case FunctionSpec:
		return s, true
	case *FunctionSpec:
		if s == nil {
			return FunctionSpec{}, false
		}
		return *s, true
	case map[string]any:
		name, ok := s["functionName"].(string)
		if !ok {
			return FunctionSpec{}, false
		}
		args, _ := s["functionArguments"].(map[string]any)
		return FunctionSpec{FunctionName: FunctionName(name), FunctionArguments: args}, true
	default:
		return FunctionSpec{}, false
	}
}

// IsFunctionSpec reports whether v is a call node.
func IsFunctionSpec(v any) bool {
	_, ok := AsFunctionSpec(v)
	return ok
}

// ValidateSpec walks a spec tree, including plain objects and arrays nested in
// it, and reports every unknown function name once.
func ValidateSpec(v any) error {
	unknown := map[FunctionName]struct{}{}
	collectUnknownFunctions(v, unknown)
	if len(unknown) == 0 {
		return nil
	}
	names := make([]string, 0, len(unknown))
	for name := range unknown {
		names = append(names, string(name))
	}
	sort.Strings(names)
	errs := make([]error, 0, len(names))
	for _, name := range names {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownFunction, name))
	}
	return errors.Join(errs...)
}

func collectUnknownFunctions(v any, unknown map[FunctionName]struct{}) {
	if spec, ok := AsFunctionSpec(v); ok {
		if !spec.FunctionName.IsKnown() {
			unknown[spec.FunctionName] = struct{}{}
		}
		for _, arg := range spec.FunctionArguments {
			collectUnknownFunctions(arg, unknown)
		}
		return
	}
	switch node := v.(type) {
	case map[string]any:
		for _, child := range node {
			collectUnknownFunctions(child, unknown)
		}
	case []any:
		for _, child := range node {
			collectUnknownFunctions(child, unknown)
		}
	}
}
