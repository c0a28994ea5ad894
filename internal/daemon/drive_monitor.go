package daemon

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"gamedex/internal/logging"
)

// driveMonitor listens for udev netlink events and triggers a library
// rescan when a storage partition appears, so games installed on an
// external drive show up without a manual scan.
type driveMonitor struct {
	logger  *slog.Logger
	handler func(device string)

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

func newDriveMonitor(logger *slog.Logger, handler func(device string)) *driveMonitor {
	return &driveMonitor{
		logger:  logging.NewComponentLogger(logger, "drive-monitor"),
		handler: handler,
	}
}

// Start begins listening for udev netlink events. A connect failure is
// non-fatal: scans can still be triggered manually.
func (m *driveMonitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		m.logger.Warn("failed to connect to netlink socket; hotplug rescans unavailable",
			logging.Error(err))
		return nil
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, quit)

	m.logger.Info("drive monitor started")
	return nil
}

// Stop shuts down the drive monitor.
func (m *driveMonitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false

	m.logger.Info("drive monitor stopped")
}

// Running reports whether the monitor is active.
func (m *driveMonitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *driveMonitor) monitorLoop(ctx context.Context, quit <-chan struct{}) {
	events := make(chan netlink.UEvent)
	errs := make(chan error)

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return
	}

	monitorQuit := conn.Monitor(events, errs, buildDriveMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-events:
			m.handleEvent(uevent)
		case err := <-errs:
			m.logger.Warn("drive monitor error", logging.Error(err))
		}
	}
}

// buildDriveMatcher matches mounted-storage arrivals:
// SUBSYSTEM=block, DEVTYPE=partition, ACTION=add.
func buildDriveMatcher() netlink.Matcher {
	action := "add"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "block",
			"DEVTYPE":   "partition",
		},
	})
	return rules
}

func (m *driveMonitor) handleEvent(uevent netlink.UEvent) {
	device := deviceName(uevent)
	if device == "" {
		m.logger.Debug("ignoring event without device name",
			logging.String("action", string(uevent.Action)),
			logging.String("kobj", uevent.KObj))
		return
	}

	m.logger.Info("storage partition detected",
		logging.String("device", device),
		logging.String("action", string(uevent.Action)))

	if m.handler != nil {
		m.handler(device)
	}
}

// deviceName extracts the /dev node from a uevent, falling back to the
// kernel object path's last element.
func deviceName(uevent netlink.UEvent) string {
	if name, ok := uevent.Env["DEVNAME"]; ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return ""
		}
		if !strings.HasPrefix(name, "/dev/") {
			name = "/dev/" + name
		}
		return name
	}
	if idx := strings.LastIndex(uevent.KObj, "/"); idx >= 0 && idx+1 < len(uevent.KObj) {
		return "/dev/" + uevent.KObj[idx+1:]
	}
	return ""
}
