package input

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// nmapRun mirrors the subset of Nmap's XML output needed to extract
// HTTP/HTTPS service URLs.
type nmapRun struct {
	Hosts []struct {
		Address struct {
			Addr string `xml:"addr,attr"`
		} `xml:"address"`
		Ports []struct {
			PortID string `xml:"portid,attr"`
			State  struct {
				State string `xml:"state,attr"`
			} `xml:"state"`
			Service struct {
				Name   string `xml:"name,attr"`
				Tunnel string `xml:"tunnel,attr"`
			} `xml:"service"`
		} `xml:"ports>port"`
	} `xml:"host"`
}

// ReadNmapXML parses Nmap XML output and extracts one URL per open
// http/https/ssl-tunneled service.
func ReadNmapXML(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var run nmapRun
	if err := xml.Unmarshal(data, &run); err != nil {
		return nil, err
	}

	var urls []string
	for _, host := range run.Hosts {
		addr := host.Address.Addr
		if addr == "" {
			continue
		}
		for _, port := range host.Ports {
			if port.State.State != "open" {
				continue
			}
			name := port.Service.Name
			if !strings.Contains(name, "http") && !strings.Contains(name, "ssl") {
				continue
			}
			scheme := "http"
			if strings.Contains(name, "ssl") || strings.Contains(name, "https") || port.Service.Tunnel == "ssl" {
				scheme = "https"
			}
			urls = append(urls, fmt.Sprintf("%s://%s:%s", scheme, addr, port.PortID))
		}
	}
	return urls, nil
}
