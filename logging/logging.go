// Package logging wraps go.uber.org/zap for the structured, protocol-level
// logging this module's layers emit: session lifecycle events and
// hex-dumped TX/RX frames. It is nil-safe — code that never calls
// SetLogger gets a no-op logger, so importing this module does not force
// logging configuration on a caller.
package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	mu sync.RWMutex
	l  *zap.Logger
)

// SetLogger installs the *zap.Logger every package in this module logs
// through. Passing nil restores the no-op default.
func SetLogger(logger *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	l = logger
}

// L returns the currently installed logger, or a no-op logger if none
// has been set.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// Connect logs a connection attempt at info level.
func Connect(protocol, address string) {
	L().Info("connect", zap.String("protocol", protocol), zap.String("address", address))
}

// ConnectSuccess logs a successful connection at info level.
func ConnectSuccess(protocol, address, details string) {
	L().Info("connected", zap.String("protocol", protocol), zap.String("address", address), zap.String("details", details))
}

// ConnectError logs a failed connection attempt at warn level.
func ConnectError(protocol, address string, err error) {
	L().Warn("connect failed", zap.String("protocol", protocol), zap.String("address", address), zap.Error(err))
}

// Disconnect logs a disconnection at info level.
func Disconnect(protocol, address, reason string) {
	L().Info("disconnect", zap.String("protocol", protocol), zap.String("address", address), zap.String("reason", reason))
}

// Error logs an error with context at error level.
func Error(protocol, context string, err error) {
	L().Error(context, zap.String("protocol", protocol), zap.Error(err))
}

// TX logs a transmitted frame at debug level, including a hex dump.
func TX(protocol string, data []byte) {
	if ce := L().Check(zapDebug, "tx"); ce != nil {
		ce.Write(zap.String("protocol", protocol), zap.Int("bytes", len(data)), zap.String("hex", hexDump(data)))
	}
}

// RX logs a received frame at debug level, including a hex dump.
func RX(protocol string, data []byte) {
	if ce := L().Check(zapDebug, "rx"); ce != nil {
		ce.Write(zap.String("protocol", protocol), zap.Int("bytes", len(data)), zap.String("hex", hexDump(data)))
	}
}

const zapDebug = zap.DebugLevel

// hexDump renders data as offset/hex/ASCII lines, adapted from the
// multi-protocol gateway's debug logger that this package replaces.
func hexDump(data []byte) string {
	if len(data) == 0 {
		return "(empty)"
	}
	var sb strings.Builder
	for offset := 0; offset < len(data); offset += 16 {
		sb.WriteString(fmt.Sprintf("%04x: ", offset))
		for i := 0; i < 16; i++ {
			if offset+i < len(data) {
				sb.WriteString(fmt.Sprintf("%02x ", data[offset+i]))
			} else {
				sb.WriteString("   ")
			}
		}
		sb.WriteByte(' ')
		for i := 0; i < 16 && offset+i < len(data); i++ {
			b := data[offset+i]
			if b >= 32 && b < 127 {
				sb.WriteByte(b)
			} else {
				sb.WriteByte('.')
			}
		}
		if offset+16 < len(data) {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
