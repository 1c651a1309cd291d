package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "ipv4 last octet zeroed", input: "192.168.1.47", expected: "192.168.1.0"},
		{name: "ipv4 mapped ipv6", input: "::ffff:10.1.2.3", expected: "10.1.2.0"},
		{name: "ipv6 keeps /48", input: "2001:db8:85a3::8a2e:370:7334", expected: "2001:db8:85a3::"},
		{name: "empty", input: "", expected: "unknown"},
		{name: "unknown passthrough", input: "unknown", expected: "unknown"},
		{name: "garbage", input: "not-an-ip", expected: "invalid"},
		{name: "with port", input: "192.168.1.1:8080", expected: "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AnonymizeIP(tt.input))
		})
	}
}

func TestAnonymizeIP_SameNetworkCollapses(t *testing.T) {
	assert.Equal(t, AnonymizeIP("192.168.1.1"), AnonymizeIP("192.168.1.255"))
	assert.NotEqual(t, AnonymizeIP("192.168.1.47"), AnonymizeIP("192.168.2.47"))
}

func TestMasking(t *testing.T) {
	assert.Equal(t, "0912*****89", MaskPhone("09123456789"))
	assert.Equal(t, "12******90", MaskNationalCode("1234567890"))
	assert.Equal(t, "***", MaskPhone("091"))
	assert.Equal(t, "", MaskNationalCode(""))
}
