// Package backend defines the boundary between Bon's front-end and an
// out-of-process code generator: the ordered function list, struct-map
// layout, and extern registry a backend needs to emit machine code,
// without this repository depending on any particular backend. Modeled
// on funvibe-funxy's internal/backend ("interface for different
// execution backends") — same shape, applied to this repository's own
// domain instead of funxy's bytecode VM.
package backend

import (
	"sort"

	"github.com/daniel-p-gonzalez/bon/internal/ast"
	"github.com/daniel-p-gonzalez/bon/internal/module"
	"github.com/daniel-p-gonzalez/bon/internal/typesystem"
)

// FieldLayout is one field's position within a constructor's flattened
// argument list.
type FieldLayout struct {
	Name  string
	Index int
}

// StructLayout describes one constructor's runtime shape: a numeric tag
// (for discriminating a variant at runtime) plus its ordered fields —
// the Go-side equivalent of the reference compiler's struct_map entries,
// minus the literal LLVM StructType handle (that's the backend's job to
// build, not this repository's).
type StructLayout struct {
	ConstructorName string
	Tag             int
	Fields          []FieldLayout
}

// Emitter is implemented by an external code generator; this repository
// ships no concrete implementation (machine-code generation is
// explicitly out of scope), only the interface a backend must satisfy
// to consume a fully type-checked module.
type Emitter interface {
	EmitFunction(fn *ast.FunctionDecl, mangledName string) error
	EmitStruct(layout StructLayout) error
	EmitExtern(proto *ast.Prototype) error
}

// Boundary adapts a finished module.State into the three views a
// backend needs.
type Boundary struct {
	state *module.State
}

// NewBoundary wraps state for handoff to a backend.
func NewBoundary(state *module.State) *Boundary {
	return &Boundary{state: state}
}

// OrderedFunctions returns the module's functions in dependency order
// (callees before callers), as computed by module.State.OrderFunctions.
func (b *Boundary) OrderedFunctions() []*ast.FunctionDecl {
	return b.state.OrderedFunctions
}

// ExternPrototypes returns every `cdef` prototype registered in the
// module.
func (b *Boundary) ExternPrototypes() []*ast.Prototype {
	var out []*ast.Prototype
	for _, p := range b.state.FunctionProtos {
		if p.IsExtern {
			out = append(out, p)
		}
	}
	return out
}

// StructMap builds a StructLayout for every registered constructor, tag
// and field order exactly as recorded by the type system's constructor
// registry during parsing.
func (b *Boundary) StructMap(reg *typesystem.Registry, names []string) map[string]StructLayout {
	out := map[string]StructLayout{}
	for _, name := range names {
		info, ok := reg.GetConstructorInfo(name)
		if !ok {
			continue
		}
		fields := make([]FieldLayout, 0, len(info.FieldIndex))
		for fieldName, idx := range info.FieldIndex {
			fields = append(fields, FieldLayout{Name: fieldName, Index: idx})
		}
		sort.Slice(fields, func(i, j int) bool { return fields[i].Index < fields[j].Index })
		out[name] = StructLayout{ConstructorName: name, Tag: info.Tag, Fields: fields}
	}
	return out
}

// Emit drives an Emitter over the whole module: externs, then every
// ordered function, matching the reference compiler's own code-gen pass
// ordering (struct/extern declarations before function bodies, so a
// function referencing a not-yet-emitted sibling can still forward
// reference it by name).
func Emit(b *Boundary, e Emitter) error {
	for _, proto := range b.ExternPrototypes() {
		if err := e.EmitExtern(proto); err != nil {
			return err
		}
	}
	for _, fn := range b.OrderedFunctions() {
		if err := e.EmitFunction(fn, fn.Proto.Name); err != nil {
			return err
		}
	}
	return nil
}
