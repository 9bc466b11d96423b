package dtu

import "errors"

// Error kinds the transport distinguishes (§7). The framing, integrity and
// decode kinds collapse a round trip to a null result with a
// ConnectionState side effect; ErrValidation is raised before any I/O.
// Callers inspect these with errors.Is.
var (
	// ErrInvalidMagic means the inbound buffer did not start with the
	// expected magic header.
	ErrInvalidMagic = errors.New("dtu: invalid magic header")

	// ErrFrameTooShort means the inbound buffer was shorter than the
	// minimum frame size for its framing variant.
	ErrFrameTooShort = errors.New("dtu: frame too short")

	// ErrLengthMismatch means the frame's declared length did not match
	// the number of bytes actually read.
	ErrLengthMismatch = errors.New("dtu: declared length does not match buffer")

	// ErrCRCMismatch means the CRC16 carried in the frame header did not
	// match the CRC16 computed over the payload region.
	ErrCRCMismatch = errors.New("dtu: crc16 mismatch")

	// ErrAuthenticationFailed means AES-128-GCM authentication failed
	// while opening an encrypted payload.
	ErrAuthenticationFailed = errors.New("dtu: gcm authentication failed")

	// ErrEmptyResponse means the payload decoded to a zero-length
	// message, which is treated the same as a decode failure.
	ErrEmptyResponse = errors.New("dtu: empty decoded response")

	// ErrValidation means a caller-side precondition was violated.
	// Validation errors are synchronous: no frame is ever emitted.
	ErrValidation = errors.New("dtu: validation failed")

	// ErrNoResponse names the "device never answered" outcome. No function
	// in this package returns it, and the CLI marks that outcome with its
	// own wrapper type instead.
	ErrNoResponse = errors.New("dtu: no response from device")
)
