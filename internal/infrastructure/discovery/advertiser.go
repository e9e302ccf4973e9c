// Package discovery advertises the API on the local network over mDNS
package discovery

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/grandcat/zeroconf"
	"github.com/tourassist/backend/internal/infrastructure/config"
	"github.com/tourassist/backend/internal/infrastructure/log"
)

// mDNS service identity
const (
	ServiceType = "_tourassist._tcp"
	Domain      = "local."
	APIVersion  = "v1"
)

// ServiceInfo describes the advertised service
type ServiceInfo struct {
	InstanceName string
	Port         int
	TxtRecords   map[string]string
}

// Advertiser publishes ServiceInfo over mDNS
type Advertiser struct {
	mu      sync.Mutex
	enabled bool
	server  *zeroconf.Server
	info    *ServiceInfo
	logger  *slog.Logger
}

// NewAdvertiser creates an advertiser; a disabled one makes Start a no-op
func NewAdvertiser(cfg *config.DiscoveryConfig) *Advertiser {
	return &Advertiser{
		enabled: cfg.MDNSEnabled,
		logger:  log.NewModuleLogger("discovery", "mdns_advertiser"),
	}
}

// Start begins advertising info
func (a *Advertiser) Start(info ServiceInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.enabled {
		return nil
	}
	if a.server != nil {
		return fmt.Errorf("advertiser is already running")
	}

	txt := info.txt()
	server, err := zeroconf.Register(info.InstanceName, ServiceType, Domain, info.Port, txt, nil)
	if err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	a.server = server
	a.info = &info
	a.logger.Info("mDNS advertiser started",
		"instance", info.InstanceName,
		"port", info.Port,
		"txt_records", txt,
	)
	return nil
}

// Stop withdraws the advertisement
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return
	}
	a.server.Shutdown()
	a.server = nil
	a.info = nil
	a.logger.Info("mDNS advertiser stopped")
}

// IsRunning reports whether the service is being advertised
func (a *Advertiser) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.server != nil
}

// BuildServiceInfo describes this instance listening on httpPort (":8000" form)
func BuildServiceInfo(httpPort, version string) (ServiceInfo, error) {
	port, err := strconv.Atoi(strings.TrimPrefix(httpPort[strings.LastIndex(httpPort, ":")+1:], ":"))
	if err != nil || port <= 0 {
		return ServiceInfo{}, fmt.Errorf("invalid HTTP port %q", httpPort)
	}

	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "tourassist"
	}

	return ServiceInfo{
		InstanceName: "TourAssist on " + host,
		Port:         port,
		TxtRecords: map[string]string{
			"version": version,
			"api":     APIVersion,
		},
	}, nil
}

// txt renders TXT records as sorted key=value pairs
func (i ServiceInfo) txt() []string {
	records := make([]string, 0, len(i.TxtRecords))
	for k, v := range i.TxtRecords {
		records = append(records, k+"="+v)
	}
	sort.Strings(records)
	return records
}
