// Copyright 2024 The asusd-go Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package busserver publishes the daemon's object tree on the system
// message bus (spec.md §6) using github.com/godbus/dbus/v5. It provides the
// generic "Get, Set, PropertiesChanged" pattern every published object
// follows, and converts every internal error into the single Failed D-Bus
// error name spec.md §7 requires. Grounded on the client-side Export/signal
// idiom in
// _examples/nya3jp-tast-tests/src/chromiumos/tast/local/bluetooth/bluez/agent.go
// (conn.Export(obj, path, iface)) and dbusutil's PropertyHolder shape,
// adapted from consuming an object tree to publishing one.
package busserver

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/rogdaemon/asusd-go/internal/rogerrors"
)

// WellKnownName is the reverse-DNS, ASUS-rooted bus name this daemon owns
// (spec.md §6).
const WellKnownName = "org.asus.AsusdGo"

const propertiesIface = "org.freedesktop.DBus.Properties"

// Server owns the system-bus connection and the set of currently-published
// objects. All methods are safe for concurrent use.
type Server struct {
	conn   *dbus.Conn
	logger *slog.Logger

	mu        sync.Mutex
	published map[dbus.ObjectPath]string // path -> iface, for Retract/introspection bookkeeping
}

// Dial connects to the system bus, requests WellKnownName, and returns a
// Server ready to publish objects. The caller owns the returned Server's
// lifetime and must call Close when the daemon shuts down.
func Dial(logger *slog.Logger) (*Server, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, rogerrors.Wrap(err, "connecting to system bus")
	}
	reply, err := conn.RequestName(WellKnownName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, rogerrors.Wrap(err, "requesting bus name "+WellKnownName)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, rogerrors.Errorf("bus name %s already owned", WellKnownName)
	}
	return &Server{conn: conn, logger: logger, published: map[dbus.ObjectPath]string{}}, nil
}

// Close releases the bus name and closes the connection.
func (s *Server) Close() error {
	s.conn.ReleaseName(WellKnownName)
	return s.conn.Close()
}

// Publish exports obj's methods at path under iface as they are; it does
// not wrap or convert their return values. obj's methods must already use
// the *dbus.Error-returning signature godbus requires for exported methods
// that can fail, and must themselves convert internal errors to the single
// Failed D-Bus error name (spec.md §7).
func (s *Server) Publish(path dbus.ObjectPath, iface string, obj interface{}) error {
	if err := s.conn.Export(obj, path, iface); err != nil {
		return rogerrors.Wrap(err, "exporting "+string(path))
	}
	s.mu.Lock()
	s.published[path] = iface
	s.mu.Unlock()
	s.logger.Info("published bus object", "path", path, "interface", iface)
	return nil
}

// Retract removes a previously-published object, used on hotplug removal
// (spec.md §4.4.8: "on remove, retract the object at the matching path").
func (s *Server) Retract(path dbus.ObjectPath) error {
	if err := s.conn.Export(nil, path, ""); err != nil {
		return rogerrors.Wrap(err, "retracting "+string(path))
	}
	s.mu.Lock()
	delete(s.published, path)
	s.mu.Unlock()
	s.logger.Info("retracted bus object", "path", path)
	return nil
}

// NotifyPropertyChanged implements controller.Notifier. It emits a
// standard org.freedesktop.DBus.Properties.PropertiesChanged signal with
// prop listed as invalidated rather than resent, since the server has no
// generic way to read a controller's current property value back out; a
// listener that needs the new value issues a Get in response (spec.md §6:
// "Each property follows the standard Get, Set, PropertiesChanged
// pattern").
func (s *Server) NotifyPropertyChanged(objectPath, iface, prop string) {
	changed := map[string]dbus.Variant{}
	invalidated := []string{prop}
	if err := s.conn.Emit(dbus.ObjectPath(objectPath), propertiesIface+".PropertiesChanged", iface, changed, invalidated); err != nil {
		s.logger.Warn("failed to emit PropertiesChanged", "path", objectPath, "interface", iface, "property", prop, "error", err)
	}
}

// AsDBusError converts any error into the Failed-named *dbus.Error spec.md
// §7 mandates at the bus boundary; the original message is preserved as the
// error's single string argument for diagnostics, but callers must not rely
// on its format ("methods never panic on user input" but names no error
// taxonomy exposed over the bus).
func AsDBusError(err error) *dbus.Error {
	if err == nil {
		return nil
	}
	return dbus.NewError("org.asus.AsusdGo.Failed", []interface{}{fmt.Sprint(err)})
}

// Conn exposes the underlying connection for sessionbridge's signal
// subscriptions, which need the same bus connection this server owns
// rather than a second independent dial.
func (s *Server) Conn() *dbus.Conn { return s.conn }
