// Package clihelp holds the bits of flag-handling and value-parsing
// shared by the enip* demo programs, so each cmd/ main stays a thin
// cobra wrapper around the session package (spec.md §9).
package clihelp

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/renej-github/etherip/cip"
	"github.com/renej-github/etherip/logging"
	"github.com/renej-github/etherip/session"
)

// ConnFlags are the flags every enip* program accepts to name a PLC.
type ConnFlags struct {
	Address   string
	Slot      uint8
	TimeoutMs int
	Verbose   bool
}

// Register adds the connection flags to cmd.
func (f *ConnFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Address, "address", "", "PLC address, host or host:port (required)")
	cmd.Flags().Uint8Var(&f.Slot, "slot", 0, "backplane slot of the controller")
	cmd.Flags().IntVar(&f.TimeoutMs, "timeout-ms", 2000, "per-call I/O timeout in milliseconds")
	cmd.Flags().BoolVar(&f.Verbose, "verbose", false, "log every TX/RX frame at debug level")
	cmd.MarkFlagRequired("address")
}

// Open configures logging then opens a session using the flags.
func (f *ConnFlags) Open() (*session.Session, error) {
	if f.Verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			logging.SetLogger(logger)
		}
	}
	host := f.Address
	opts := []session.Option{session.WithTimeout(time.Duration(f.TimeoutMs) * time.Millisecond)}
	if h, p, err := net.SplitHostPort(f.Address); err == nil {
		port, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("parse port in %q: %w", f.Address, err)
		}
		host = h
		opts = append(opts, session.WithPort(uint16(port)))
	}
	return session.Open(host, byte(f.Slot), opts...)
}

// typeByName maps a CLI --type flag to a cip type code.
func typeByName(name string) (uint16, bool) {
	switch strings.ToUpper(name) {
	case "BOOL":
		return cip.TypeBOOL, true
	case "SINT":
		return cip.TypeSINT, true
	case "INT":
		return cip.TypeINT, true
	case "DINT":
		return cip.TypeDINT, true
	case "LINT":
		return cip.TypeLINT, true
	case "REAL":
		return cip.TypeREAL, true
	case "LREAL":
		return cip.TypeLREAL, true
	case "BITS":
		return cip.TypeBITS, true
	case "STRING":
		return cip.TypeSTRING, true
	default:
		return 0, false
	}
}

// ParseValue builds a *cip.Value from a --type name and a raw string,
// the way an enipwrite invocation names the tag's type on the command
// line (there is no online type discovery in this module; see
// spec.md's Non-goals on tag browsing).
func ParseValue(typeName, raw string) (*cip.Value, error) {
	typeCode, ok := typeByName(typeName)
	if !ok {
		return nil, fmt.Errorf("unknown type %q (want one of BOOL, SINT, INT, DINT, LINT, REAL, LREAL, BITS, STRING)", typeName)
	}
	if typeCode == cip.TypeSTRING {
		return cip.NewString(raw)
	}
	if typeCode == cip.TypeREAL || typeCode == cip.TypeLREAL {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q as float: %w", raw, err)
		}
		return cip.NewFloat(typeCode, f)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %q as integer: %w", raw, err)
	}
	return cip.NewScalar(typeCode, n)
}

// FormatValue renders a decoded *cip.Value for terminal output.
func FormatValue(v *cip.Value) string {
	if v.TypeCode == cip.TypeSTRING {
		s, err := v.String()
		if err != nil {
			return fmt.Sprintf("<string: %v>", err)
		}
		return s
	}
	if v.TypeCode == cip.TypeREAL || v.TypeCode == cip.TypeLREAL {
		parts := make([]string, v.Elements)
		for i := range parts {
			f, err := v.Float(i)
			if err != nil {
				parts[i] = fmt.Sprintf("<err: %v>", err)
				continue
			}
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return strings.Join(parts, ", ")
	}
	parts := make([]string, v.Elements)
	for i := range parts {
		n, err := v.Int(i)
		if err != nil {
			parts[i] = fmt.Sprintf("<err: %v>", err)
			continue
		}
		parts[i] = strconv.FormatInt(n, 10)
	}
	return strings.Join(parts, ", ")
}
