// Package phf provides lookups over perfect hash tables generated at build
// time.
//
// A table maps a fixed set of distinct keys to slots with no collisions, so
// every lookup is one hash, one displacement and one key comparison. Tables
// are produced by the codegen package, either as Go source that declares a
// Map or Set literal, or as a binary file opened with Open.
//
// # Basic Usage
//
// Generating a table (usually from a go:generate program):
//
//	m := codegen.NewMap[string]()
//	m.Entry("loop", "Loop").
//		Entry("continue", "Continue").
//		Entry("break", "Break")
//	fmt.Fprint(w, "var keywords = ")
//	if err := m.Build(ctx, w); err != nil {
//	    log.Fatal(err)
//	}
//
// Querying the generated literal:
//
//	kw, ok := keywords.Get("loop")
//
// Querying a binary table:
//
//	t, err := phf.Open("keywords.phf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer t.Close()
//	value, err := t.Get([]byte("loop"))
//
// # Package Structure
//
//   - Runtime lookups: map.go (Map, Entry, Disp), set.go (Set), hash.go (HashFunc)
//   - Binary tables: table.go (Open, Table), internal/format (file layout)
//   - Construction: internal/chd (partition, displacement search, retry driver)
//   - Code generation: codegen (builders, Go and Rust grammars, table writer)
//   - Literal escaping: internal/encoding
//   - Commands: cmd/phfgen (generator CLI), cmd/bench (construction benchmark)
package phf
