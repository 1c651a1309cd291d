package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimStrings(t *testing.T) {
	a, b := "  Ali ", "\t0912\n"
	TrimStrings(&a, &b)
	assert.Equal(t, "Ali", a)
	assert.Equal(t, "0912", b)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, SplitList(" kafka-1:9092, ,kafka-2:9092,kafka-1:9092 "))
	assert.Empty(t, SplitList(" , "))
	assert.Empty(t, SplitList(""))
}
