package typesystem

import "fmt"

// ConstructorInfo records how a single sum-type constructor is laid out:
// which variant type it belongs to, its numeric tag (used by the code-gen
// boundary's struct-map), and the index of each named field within the
// constructor's argument list.
type ConstructorInfo struct {
	Name        string
	ParentType  *TypeVariable
	Tag         int
	FieldIndex  map[string]int
	ArgTypes    []*TypeVariable
}

// Registry tracks every declared sum-type constructor, matching the
// reference compiler's get_type_from_constructor / get_constructor_from_type
// / get_constructor_value / get_constructor_field_index family of
// lookups, all backed here by one map instead of several parallel ones.
type Registry struct {
	byConstructor map[string]*ConstructorInfo
	// order records registration order so lookups that must pick among
	// several candidates (e.g. ConstructorsWithField) are deterministic.
	order []string
}

// NewRegistry creates an empty constructor registry.
func NewRegistry() *Registry {
	return &Registry{byConstructor: map[string]*ConstructorInfo{}}
}

// Register records a constructor belonging to parentType under the given
// tag (tags are per-type-declaration
// ordinals starting at 0, assigned by the caller since the registry does
// not know which constructors share a TypeDecl). A field name of "" marks
// an anonymous, position-only field (not reachable via field access).
func (r *Registry) Register(name string, parentType *TypeVariable, tag int, fieldNames []string, argTypes []*TypeVariable) error {
	if _, exists := r.byConstructor[name]; exists {
		return fmt.Errorf("typesystem: constructor %q already registered", name)
	}
	idx := map[string]int{}
	for i, fn := range fieldNames {
		if fn != "" {
			idx[fn] = i
		}
	}
	r.byConstructor[name] = &ConstructorInfo{
		Name:       name,
		ParentType: parentType,
		Tag:        tag,
		FieldIndex: idx,
		ArgTypes:   argTypes,
	}
	r.order = append(r.order, name)
	return nil
}

// ConstructorsWithField returns every registered constructor that
// declares a named field called fieldName, in registration order — used
// by field-access resolution (`e.f`) to find which constructor `e`'s
// type must belong to.
func (r *Registry) ConstructorsWithField(fieldName string) []*ConstructorInfo {
	var out []*ConstructorInfo
	for _, name := range r.order {
		info := r.byConstructor[name]
		if _, ok := info.FieldIndex[fieldName]; ok {
			out = append(out, info)
		}
	}
	return out
}

// GetTypeFromConstructor returns the parent sum type of a constructor
// name.
func (r *Registry) GetTypeFromConstructor(name string) (*TypeVariable, bool) {
	info, ok := r.byConstructor[name]
	if !ok {
		return nil, false
	}
	return info.ParentType, true
}

// GetConstructorInfo returns the full registration record for name.
func (r *Registry) GetConstructorInfo(name string) (*ConstructorInfo, bool) {
	info, ok := r.byConstructor[name]
	return info, ok
}

// GetConstructorValue returns a constructor's numeric tag, used by the
// code-gen boundary to discriminate variant values at runtime.
func (r *Registry) GetConstructorValue(name string) (int, bool) {
	info, ok := r.byConstructor[name]
	if !ok {
		return 0, false
	}
	return info.Tag, true
}

// GetConstructorFieldIndex returns the argument position of a named
// field within its constructor.
func (r *Registry) GetConstructorFieldIndex(ctorName, fieldName string) (int, bool) {
	info, ok := r.byConstructor[ctorName]
	if !ok {
		return 0, false
	}
	idx, ok := info.FieldIndex[fieldName]
	return idx, ok
}

// BuildFromTypeConstructor builds the TypeVariable for a single
// constructor's call type: arg1 -> arg2 -> ... -> parentType. Nullary
// constructors (no fields) just resolve to parentType itself.
func BuildFromTypeConstructor(argTypes []*TypeVariable, parentType *TypeVariable) *TypeVariable {
	if len(argTypes) == 0 {
		return parentType
	}
	return BuildFunctionType(argTypes, parentType)
}
