package codegen

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tamirms/phf"
	"github.com/tamirms/phf/internal/chd"
)

// stubGenerate returns a constructor that yields st without hashing.
func stubGenerate(st *chd.State) generateFunc {
	return func(context.Context, [][]byte, rand.Source, chd.Config) (*chd.State, error) {
		return st, nil
	}
}

// failGenerate fails the test if construction is invoked.
func failGenerate(t *testing.T) generateFunc {
	return func(context.Context, [][]byte, rand.Source, chd.Config) (*chd.State, error) {
		t.Fatal("construction must not run")
		return nil, nil
	}
}

// parseGoMap parses a Go-grammar map literal into a runtime map whose
// values are the value expressions' source text.
func parseGoMap(t *testing.T, src string) phf.Map[string] {
	t.Helper()
	fset := token.NewFileSet()
	expr, err := parser.ParseExprFrom(fset, "", src, 0)
	require.NoError(t, err, "output is not a Go expression:\n%s", src)

	lit, ok := expr.(*ast.CompositeLit)
	require.True(t, ok, "top-level expression is %T", expr)
	return mapFromLit(t, fset, src, lit)
}

// parseGoSet parses a Go-grammar set literal.
func parseGoSet(t *testing.T, src string) phf.Set {
	t.Helper()
	fset := token.NewFileSet()
	expr, err := parser.ParseExprFrom(fset, "", src, 0)
	require.NoError(t, err, "output is not a Go expression:\n%s", src)

	lit, ok := expr.(*ast.CompositeLit)
	require.True(t, ok)
	require.Len(t, lit.Elts, 1)
	kv := lit.Elts[0].(*ast.KeyValueExpr)
	require.Equal(t, "Map", kv.Key.(*ast.Ident).Name)

	m := mapFromLit(t, fset, src, kv.Value.(*ast.CompositeLit))
	s := phf.Set{Map: phf.Map[struct{}]{Key: m.Key, Hash: m.Hash, NumKeys: m.NumKeys, Disps: m.Disps}}
	for _, e := range m.Entries {
		s.Map.Entries = append(s.Map.Entries, phf.Entry[struct{}]{Key: e.Key})
	}
	return s
}

func mapFromLit(t *testing.T, fset *token.FileSet, src string, lit *ast.CompositeLit) phf.Map[string] {
	t.Helper()
	var m phf.Map[string]
	for _, elt := range lit.Elts {
		kv := elt.(*ast.KeyValueExpr)
		switch name := kv.Key.(*ast.Ident).Name; name {
		case "Key":
			v, err := strconv.ParseUint(kv.Value.(*ast.BasicLit).Value, 0, 64)
			require.NoError(t, err)
			m.Key = v
		case "Hash":
			sel := kv.Value.(*ast.SelectorExpr)
			h, ok := phf.ParseHashFunc(strings.ToLower(sel.Sel.Name))
			require.True(t, ok, "unknown hash %s", sel.Sel.Name)
			m.Hash = h
		case "NumKeys":
			n, err := strconv.Atoi(kv.Value.(*ast.BasicLit).Value)
			require.NoError(t, err)
			m.NumKeys = n
		case "Disps":
			for _, d := range kv.Value.(*ast.CompositeLit).Elts {
				pair := d.(*ast.CompositeLit).Elts
				require.Len(t, pair, 2)
				m.Disps = append(m.Disps, phf.Disp{D1: parseUint32(t, pair[0]), D2: parseUint32(t, pair[1])})
			}
		case "Entries":
			for _, e := range kv.Value.(*ast.CompositeLit).Elts {
				m.Entries = append(m.Entries, entryFromLit(t, fset, src, e.(*ast.CompositeLit)))
			}
		default:
			t.Fatalf("unexpected field %s", name)
		}
	}
	return m
}

func entryFromLit(t *testing.T, fset *token.FileSet, src string, lit *ast.CompositeLit) phf.Entry[string] {
	t.Helper()
	var keyExpr, valueExpr ast.Expr
	switch len(lit.Elts) {
	case 1: // {Key: "k"}
		keyExpr = lit.Elts[0].(*ast.KeyValueExpr).Value
	case 2: // {"k", v}
		keyExpr, valueExpr = lit.Elts[0], lit.Elts[1]
	default:
		t.Fatalf("entry has %d elements", len(lit.Elts))
	}
	key, err := strconv.Unquote(keyExpr.(*ast.BasicLit).Value)
	require.NoError(t, err)

	e := phf.Entry[string]{Key: key}
	if valueExpr != nil {
		start := fset.Position(valueExpr.Pos()).Offset
		end := fset.Position(valueExpr.End()).Offset
		e.Value = src[start:end]
	}
	return e
}

func parseUint32(t *testing.T, e ast.Expr) uint32 {
	t.Helper()
	v, err := strconv.ParseUint(e.(*ast.BasicLit).Value, 10, 32)
	require.NoError(t, err)
	return uint32(v)
}
