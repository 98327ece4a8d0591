package common

import (
	"fmt"
	"testing"
)

func BenchmarkGenBatchInsertStmt(b *testing.B) {
	cols := make([]string, 12)
	for i := range cols {
		cols[i] = fmt.Sprintf("col_%d", i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := GenBatchInsertStmt("bench_table", cols, 500, QuestionMark); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAlignRow(b *testing.B) {
	fields := SplitLine("1, Alice ,88,NULL,Toronto,F", ',')
	dst := make([]interface{}, 0, 8)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dst = AlignRow(fields, 8, dst)
	}
}
