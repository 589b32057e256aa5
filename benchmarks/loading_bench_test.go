// Package benchmarks provides document loading benchmarks.
package benchmarks

import (
	"fmt"
	"testing"

	"github.com/tokenflow/tokenfsm/yamldef"
)

func BenchmarkChartParse(b *testing.B) {
	for _, n := range []int{10, 100} {
		b.Run(fmt.Sprintf("states=%d", n), func(b *testing.B) {
			data := GenChartYAML(n)
			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := yamldef.Parse(data); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkChartLoad(b *testing.B) {
	for _, n := range []int{10, 100} {
		b.Run(fmt.Sprintf("states=%d", n), func(b *testing.B) {
			data := GenChartYAML(n)
			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := yamldef.Load(data, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
