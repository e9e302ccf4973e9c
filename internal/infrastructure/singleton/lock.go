// Package singleton keeps one server per port by holding its listener
package singleton

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"
)

const (
	// ServiceName is the service field reported by a healthy instance
	ServiceName = "tourassist"
	// HealthCheckTimeout bounds the probe of an existing instance
	HealthCheckTimeout = 2 * time.Second
)

// windows WSAEADDRINUSE
const wsaeAddrInUse = syscall.Errno(10048)

// CheckAndLock binds port and returns its listener.
// When a healthy instance already holds the port it returns nil, nil and the
// caller should exit. A port held by anything else is an error.
func CheckAndLock(port string) (net.Listener, error) {
	listener, err := net.Listen("tcp", port)
	if err == nil {
		return listener, nil
	}

	if !isAddrInUse(err) {
		return nil, fmt.Errorf("failed to listen on %s: %w", port, err)
	}
	if isInstanceRunning(port) {
		return nil, nil
	}
	return nil, fmt.Errorf("port %s is in use but the health check failed", port)
}

// isAddrInUse reports whether err is a bind failure on a taken address
func isAddrInUse(err error) bool {
	if err == nil {
		return false
	}

	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	if !errors.As(opErr.Err, &sysErr) {
		return false
	}
	var errno syscall.Errno
	if errors.As(sysErr.Err, &errno) {
		return errno == syscall.EADDRINUSE || errno == wsaeAddrInUse
	}
	return false
}

// isInstanceRunning probes /health on port for a tourassist instance
func isInstanceRunning(port string) bool {
	host, p, err := net.SplitHostPort(port)
	if err != nil {
		return false
	}
	if host == "" {
		host = "localhost"
	}

	client := &http.Client{Timeout: HealthCheckTimeout}
	resp, err := client.Get(fmt.Sprintf("http://%s/health", net.JoinHostPort(host, p)))
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var body struct {
		Service string `json:"service"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}
	return body.Service == ServiceName
}
