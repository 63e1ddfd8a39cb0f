// Package codegen builds perfect hash tables from keys known at build time
// and writes them out as source code or as binary table files.
//
// A Map pairs each key with a value literal that is copied verbatim into
// the output; a Set holds keys only. Build writes one expression in the
// selected Grammar (Go by default, or Rust for the phf crate):
//
//	m := codegen.NewMap[string](codegen.WithValueType("Keyword"))
//	m.Entry("loop", "KeywordLoop").Entry("break", "KeywordBreak")
//	fmt.Fprint(w, "var keywords = ")
//	m.MustBuild(ctx, w)
//
// Construction retries with fresh seeds until an attempt succeeds.
// WithSeed makes the output reproducible; WithMaxAttempts bounds the work.
package codegen
