// ABOUTME: mDNS advertisement of the now-playing hub
// ABOUTME: Lets other devices on the LAN find the player's WebSocket feed
package discovery

import (
	"fmt"
	"net"
	"sync"

	"github.com/hashicorp/mdns"
	"github.com/rs/zerolog"
)

// ServiceType is the mDNS service advertised for the hub
const ServiceType = "_crossing-radio._tcp"

// Config holds advertisement settings
type Config struct {
	ServiceName string
	Port        int
	Path        string // WebSocket path, published as a TXT record
	Session     string
}

// Advertiser publishes the hub over mDNS
type Advertiser struct {
	config Config
	logger zerolog.Logger

	mu     sync.Mutex
	server *mdns.Server
}

// NewAdvertiser creates an advertiser; nothing is published until Start
func NewAdvertiser(config Config, logger zerolog.Logger) *Advertiser {
	if config.Path == "" {
		config.Path = "/ws"
	}
	return &Advertiser{
		config: config,
		logger: logger.With().Str("component", "mdns").Logger(),
	}
}

// Service builds the mDNS zone for ips
func (a *Advertiser) Service(ips []net.IP) (*mdns.MDNSService, error) {
	if a.config.Port <= 0 {
		return nil, fmt.Errorf("invalid port %d", a.config.Port)
	}

	txt := []string{"path=" + a.config.Path}
	if a.config.Session != "" {
		txt = append(txt, "session="+a.config.Session)
	}

	service, err := mdns.NewMDNSService(
		a.config.ServiceName,
		ServiceType,
		"",
		"",
		a.config.Port,
		ips,
		txt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return service, nil
}

// Start begins answering mDNS queries
func (a *Advertiser) Start() error {
	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := a.Service(ips)
	if err != nil {
		return err
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	a.mu.Lock()
	a.server = server
	a.mu.Unlock()

	a.logger.Info().
		Str("name", a.config.ServiceName).
		Int("port", a.config.Port).
		Str("type", ServiceType).
		Msg("Advertising mDNS service")
	return nil
}

// Stop withdraws the advertisement
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server == nil {
		return
	}
	if err := a.server.Shutdown(); err != nil {
		a.logger.Debug().Err(err).Msg("mDNS shutdown error")
	}
	a.server = nil
}

// getLocalIPs returns the IPv4 addresses of up, non-loopback interfaces
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
				ips = append(ips, ipnet.IP)
			}
		}
	}

	return ips, nil
}
