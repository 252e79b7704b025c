package sema

import (
	"surge/internal/ast"
	"surge/internal/symbols"
	"surge/internal/types"
)

// primitiveType maps a bare type name to its interned builtin TypeID.
// Primitive names (i8, u8, f32, bool, char, string, ...) are ordinary
// identifiers in Luma's grammar (internal/token has no keyword for them),
// so a TypeExprNamed's name is only known to denote a primitive or a
// struct once checked here against the builtin table (spec.md §3's type
// list); anything else is assumed to name a struct declaration.
func primitiveType(ctx *Context, name string) (types.TypeID, bool) {
	b := ctx.TypesIn.Builtins()
	switch name {
	case "i8":
		return b.I8, true
	case "i16":
		return b.I16, true
	case "i32":
		return b.I32, true
	case "i64":
		return b.I64, true
	case "u8":
		return b.U8, true
	case "u16":
		return b.U16, true
	case "u32":
		return b.U32, true
	case "u64":
		return b.U64, true
	case "f32":
		return b.F32, true
	case "f64":
		return b.F64, true
	case "bool":
		return b.Bool, true
	case "char":
		return b.Char, true
	case "string":
		return b.String, true
	case "unit":
		return b.Unit, true
	}
	return types.NoTypeID, false
}

// declEntry builds the initial type cache entry for a declaration site
// (spec.md §4.4): Concrete(ty) when an annotation was present and resolved,
// otherwise a fresh Relative(v) for inference to narrow later.
func declEntry(ctx *Context, ty types.TypeID, hasTy bool) types.CacheEntry {
	if hasTy {
		return types.Concrete(ty)
	}
	return types.Relative(ctx.Cache.Fresh())
}

// resolveTypeExpr turns a syntactic type annotation into a concrete TypeID.
// A bare name resolves to a builtin primitive first, falling back to a
// named(name) type referencing whatever Type-namespace symbol (if any) is
// visible from scope - matching original_source's _02_name_declaration.rs,
// which clones a Type::Named{name, def_id} without requiring the struct to
// already be declared (forward references across a file are allowed; the
// def_id is best-effort). ok is false only for an omitted annotation
// (NoTypeID).
func resolveTypeExpr(ctx *Context, scope ast.ScopeID, id ast.TypeID) (types.TypeID, bool) {
	if !id.IsValid() {
		return types.NoTypeID, false
	}
	te := ctx.Builder.Types.Get(id)
	if te == nil {
		return types.NoTypeID, false
	}

	switch te.Kind {
	case ast.TypeExprNamed:
		named, _ := ctx.Builder.Types.Named(id)
		name := ctx.Strings.MustLookup(named.Name)
		if t, ok := primitiveType(ctx, name); ok {
			return t, true
		}
		var defID uint32
		if symID, ok := ctx.Symbols.Lookup(scope, symbols.Type, named.Name); ok {
			defID = uint32(symID)
		}
		return ctx.TypesIn.Intern(types.MakeNamed(name, defID)), true

	case ast.TypeExprTuple:
		tup, _ := ctx.Builder.Types.Tuple(id)
		elems := make([]types.TypeID, 0, len(tup.Elements))
		for _, el := range tup.Elements {
			t, ok := resolveTypeExpr(ctx, scope, el)
			if !ok {
				return types.NoTypeID, false
			}
			elems = append(elems, t)
		}
		return ctx.TypesIn.Intern(types.MakeTuple(elems)), true

	case ast.TypeExprPtr:
		ptr, _ := ctx.Builder.Types.Ptr(id)
		inner, ok := resolveTypeExpr(ctx, scope, ptr.Inner)
		if !ok {
			return types.NoTypeID, false
		}
		return ctx.TypesIn.Intern(types.MakePtr(inner)), true
	}
	return types.NoTypeID, false
}
