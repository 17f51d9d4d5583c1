package parser

import "testing"

// BenchmarkParseAll times the eager pass over a small synthetic demo, the
// in-repo equivalent of original_source/benches/example.rs (spec.md §1
// places a dedicated external benchmark harness out of scope, but a
// standard Benchmark* function living next to the code it measures is the
// idiomatic Go substitute).
func BenchmarkParseAll(b *testing.B) {
	buf := minimalDemoBytes()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := ParseAll(buf); err != nil {
			b.Fatal(err)
		}
	}
}
