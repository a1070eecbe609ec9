package cip

import (
	"fmt"

	"github.com/renej-github/etherip/enip"
)

// CIP service codes this client issues.
const (
	SvcGetAttributeSingle    byte = 0x0E
	SvcReadTag               byte = 0x4C
	SvcWriteTag              byte = 0x4D
	SvcMultipleServicePacket byte = 0x0A
	SvcUnconnectedSend       byte = 0x52
)

// CIP object class IDs this client addresses.
const (
	ClassIdentity      byte = 0x01
	ClassMessageRouter byte = 0x02
	ClassConnectionMgr byte = 0x06
)

// CIP general status codes (MessageRouter reply byte, spec.md §4.4).
const (
	StatusSuccess           byte = 0x00
	StatusPathSegmentError  byte = 0x04
	StatusPathUnknown       byte = 0x05
	StatusServiceNotSupport byte = 0x08
	StatusInvalidAttrValue  byte = 0x09
	StatusAttrNotSettable   byte = 0x0E
	StatusReplyDataTooLarge byte = 0x11
	StatusNotEnoughData     byte = 0x13
	StatusAttrNotSupported  byte = 0x14
	StatusTooMuchData       byte = 0x15
	StatusObjectNotExist    byte = 0x16
	StatusInvalidRequest    byte = 0x1A
	StatusEmbeddedError     byte = 0x1E // CIP_MultiRequest: at least one sub-request failed
	StatusGeneralError      byte = 0xFF
)

// Logix extended status codes (meaningful when general status is
// non-zero; e.g. surfaced under StatusGeneralError).
const (
	ExtStatusIllegalType  uint16 = 0x2101 // wrong data type for tag -> type_mismatch
	ExtStatusTagNotFound  uint16 = 0x2104
	ExtStatusTagReadOnly  uint16 = 0x2105
	ExtStatusSizeTooSmall uint16 = 0x2107
	ExtStatusSizeTooLarge uint16 = 0x2108
	ExtStatusOffsetError  uint16 = 0x2109
)

// StatusName returns a short human-readable label for a CIP general
// status code, used in error details.
func StatusName(status byte) string {
	switch status {
	case StatusSuccess:
		return "success"
	case StatusPathSegmentError:
		return "path segment error"
	case StatusPathUnknown:
		return "path destination unknown"
	case StatusServiceNotSupport:
		return "service not supported"
	case StatusInvalidAttrValue:
		return "invalid attribute value"
	case StatusAttrNotSettable:
		return "attribute not settable"
	case StatusReplyDataTooLarge:
		return "reply data too large"
	case StatusNotEnoughData:
		return "not enough data"
	case StatusAttrNotSupported:
		return "attribute not supported"
	case StatusTooMuchData:
		return "too much data"
	case StatusObjectNotExist:
		return "object does not exist"
	case StatusInvalidRequest:
		return "invalid parameter"
	case StatusEmbeddedError:
		return "embedded service error"
	case StatusGeneralError:
		return "general error (see extended status)"
	default:
		return "unknown status"
	}
}

// ExtStatusName returns a short human-readable label for a Logix
// extended status word, meaningful alongside a non-zero general status.
func ExtStatusName(ext uint16) string {
	switch ext {
	case ExtStatusIllegalType:
		return "illegal data type"
	case ExtStatusTagNotFound:
		return "tag not found"
	case ExtStatusTagReadOnly:
		return "tag is read-only"
	case ExtStatusSizeTooSmall:
		return "size too small"
	case ExtStatusSizeTooLarge:
		return "size too large"
	case ExtStatusOffsetError:
		return "offset out of range"
	default:
		return fmt.Sprintf("extended status 0x%04X", ext)
	}
}

// statusError builds the error for a non-zero CIP general status.
// ExtStatusIllegalType in the first extended-status word means the
// write value's CIP type disagrees with the tag's stored type, which
// this client surfaces as KindTypeMismatch rather than the generic
// KindProtocolStatus (spec.md §4.1, §7).
func statusError(service, status byte, ext []uint16) error {
	detail := StatusName(status)
	if len(ext) > 0 && ext[0] != 0 {
		detail = fmt.Sprintf("%s, extended: %s", detail, ExtStatusName(ext[0]))
		if ext[0] == ExtStatusIllegalType {
			return enip.New(enip.KindTypeMismatch, "service 0x%02X status 0x%02X: %s", service, status, detail)
		}
	}
	return enip.Status(service, status, ext, detail)
}
