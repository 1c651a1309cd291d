// Package privacy keeps personal data (phone numbers, national codes, client IPs)
// out of logs and event payloads in recognizable but non-identifying form.
package privacy

import (
	"net/netip"
	"strings"
)

// AnonymizeIP truncates an address to its network: /24 for IPv4, /48 for IPv6.
// Returns "unknown" for empty input and "invalid" for unparseable input.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()
	bits := 48
	if addr.Is4() {
		bits = 24
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}

// MaskPhone keeps the operator prefix and the last two digits: 09123456789 -> 0912*****89.
func MaskPhone(phone string) string {
	return maskMiddle(phone, 4, 2)
}

// MaskNationalCode keeps the first and last two digits: 1234567890 -> 12******90.
func MaskNationalCode(code string) string {
	return maskMiddle(code, 2, 2)
}

func maskMiddle(s string, head, tail int) string {
	r := []rune(s)
	if len(r) <= head+tail {
		return strings.Repeat("*", len(r))
	}
	return string(r[:head]) + strings.Repeat("*", len(r)-head-tail) + string(r[len(r)-tail:])
}
