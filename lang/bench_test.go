package lang

import (
	"context"
	"testing"
)

var benchExprs = []struct {
	name string
	expr string
}{
	{name: "literal", expr: "42"},
	{name: "arithmetic", expr: "(x + 3) * 4 - 10 / 2 ^ 2"},
	{name: "calls", expr: "minus3(minus(x, 1), 2, sum(1, 2, 3))"},
	{name: "lists", expr: "in(name, ['a', 'b', 'hello']) and x >= 2"},
}

func BenchmarkCompile(b *testing.B) {
	for _, bb := range benchExprs {
		b.Run(bb.name, func(b *testing.B) {
			b.ReportAllocs()

			for b.Loop() {
				if _, err := Compile(context.Background(), bb.expr); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEvaluate(b *testing.B) {
	env := testEnv()

	for _, bb := range benchExprs {
		b.Run(bb.name, func(b *testing.B) {
			prog, err := Compile(context.Background(), bb.expr)
			if err != nil {
				b.Fatal(err)
			}

			b.ReportAllocs()

			for b.Loop() {
				if _, err := prog.Evaluate(context.Background(), env); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCacheParse(b *testing.B) {
	env := testEnv()

	for _, bb := range benchExprs {
		b.Run(bb.name, func(b *testing.B) {
			var c Cache

			b.ReportAllocs()

			for b.Loop() {
				if _, err := c.Parse(context.Background(), bb.expr, env); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
