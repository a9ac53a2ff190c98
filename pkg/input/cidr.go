package input

import (
	"fmt"
	"net/netip"
)

// ExpandCIDR expands a CIDR range and port list into one URL per
// host/port pair. Ports 443 and 8443 get https, everything else http.
func ExpandCIDR(cidr string, ports []int) ([]string, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, err
	}
	prefix = prefix.Masked()

	// /31 and /32 have no distinct network/broadcast addresses.
	hostsOnly := prefix.Addr().Is4() && prefix.Bits() < 31

	start := prefix.Addr()
	if hostsOnly {
		start = start.Next()
	}

	var urls []string
	for addr := start; prefix.Contains(addr); addr = addr.Next() {
		if hostsOnly && !prefix.Contains(addr.Next()) {
			// Broadcast address.
			break
		}
		for _, port := range ports {
			scheme := "http"
			if port == 443 || port == 8443 {
				scheme = "https"
			}
			urls = append(urls, fmt.Sprintf("%s://%s:%d", scheme, addr, port))
		}
	}
	return urls, nil
}
