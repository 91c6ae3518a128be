// Package analysis performs static free-variable analysis over an
// exp.Exp so the server only has to load and persist the identifiers a
// request actually touches, instead of every file in the store.
package analysis

import "github.com/willmcpherson2/drd/exp"

// FreeReads returns the set of identifiers e reads that are not bound
// by an enclosing Let within e itself — the names that must come from
// disk (or be undefined) for e to evaluate.
func FreeReads(e exp.Exp) map[string]struct{} {
	return freeReads(e, map[string]struct{}{})
}

func freeReads(e exp.Exp, defined map[string]struct{}) map[string]struct{} {
	switch v := e.(type) {
	case exp.Let:
		inner := freeReads(v.Bound, defined)
		bodyDefined := union(single(v.Name), defined)
		return union(inner, freeReads(v.Body, bodyDefined))
	case exp.Select:
		return freeReads(v.Src, defined)
	case exp.Where:
		return union(freeReads(v.Src, defined), freeReads(v.Cond, defined))
	case exp.Union:
		return union(freeReads(v.L, defined), freeReads(v.R, defined))
	case exp.Difference:
		return union(freeReads(v.L, defined), freeReads(v.R, defined))
	case exp.Product:
		return union(freeReads(v.L, defined), freeReads(v.R, defined))
	case exp.Table:
		out := map[string]struct{}{}
		for _, cell := range v.Cells {
			out = union(out, freeReads(cell, defined))
		}
		return out
	case exp.Or:
		return union(freeReads(v.L, defined), freeReads(v.R, defined))
	case exp.Equals:
		return union(freeReads(v.L, defined), freeReads(v.R, defined))
	case exp.And:
		return union(freeReads(v.L, defined), freeReads(v.R, defined))
	case exp.Not:
		return freeReads(v.Inner, defined)
	case exp.Var:
		if _, ok := defined[string(v)]; ok {
			return map[string]struct{}{}
		}
		return single(string(v))
	default:
		return map[string]struct{}{}
	}
}

// TopWrites returns the identifiers a top-level Let chain binds: only
// these survive evaluation into the environment that gets persisted,
// since a Let nested inside a Select/Where/etc. body goes out of scope
// before the request finishes.
func TopWrites(e exp.Exp) map[string]struct{} {
	let, ok := e.(exp.Let)
	if !ok {
		return map[string]struct{}{}
	}
	return union(single(let.Name), TopWrites(let.Body))
}

func single(s string) map[string]struct{} {
	return map[string]struct{}{s: {}}
}

func union(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

// Intersect returns names present in both names and available.
func Intersect(names, available map[string]struct{}) map[string]struct{} {
	out := map[string]struct{}{}
	for k := range names {
		if _, ok := available[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}
