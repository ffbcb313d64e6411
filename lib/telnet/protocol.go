// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

// Package telnet implements the client side of the telnet wire format
// as spoken by MUD servers: separating application data from IAC
// command sequences, option negotiation and subnegotiation frames, and
// MCCP2 stream compression.
//
// The package is organized around the read path:
//
//   - protocol.go: command and option codes, outbound frame encoding
//   - parser.go: incremental byte-level parser producing Events
//   - reader.go: Reader, which pulls bytes from a connection, runs the
//     parser, and switches to zlib inflation when the server starts an
//     MCCP2 stream
package telnet

import (
	"bytes"
	"fmt"
)

// Command bytes (RFC 854, RFC 885). Every command is introduced by IAC.
const (
	SE   byte = 240 // end of subnegotiation
	NOP  byte = 241
	DM   byte = 242 // data mark
	BRK  byte = 243
	IP   byte = 244 // interrupt process
	AO   byte = 245 // abort output
	AYT  byte = 246 // are you there
	EC   byte = 247 // erase character
	EL   byte = 248 // erase line
	GA   byte = 249 // go ahead
	SB   byte = 250 // begin subnegotiation
	WILL byte = 251
	WONT byte = 252
	DO   byte = 253
	DONT byte = 254
	IAC  byte = 255
)

// EOR is the end-of-record command (RFC 885). MUD servers send it, like
// GA, to mark the end of a prompt.
const EOR byte = 239

// Option codes seen on MUD servers.
const (
	OptionEcho      byte = 1
	OptionSGA       byte = 3
	OptionTType     byte = 24
	OptionEOR       byte = 25
	OptionNAWS      byte = 31
	OptionCharset   byte = 42
	OptionMSDP      byte = 69
	OptionMSSP      byte = 70
	OptionCompress2 byte = 86 // MCCP2
	OptionMSP       byte = 90
	OptionMXP       byte = 91
	OptionGMCP      byte = 201
)

var commandNames = map[byte]string{
	EOR: "EOR", SE: "SE", NOP: "NOP", DM: "DM", BRK: "BRK", IP: "IP",
	AO: "AO", AYT: "AYT", EC: "EC", EL: "EL", GA: "GA", SB: "SB",
	WILL: "WILL", WONT: "WONT", DO: "DO", DONT: "DONT", IAC: "IAC",
}

var optionNames = map[byte]string{
	OptionEcho: "ECHO", OptionSGA: "SGA", OptionTType: "TTYPE",
	OptionEOR: "EOR", OptionNAWS: "NAWS", OptionCharset: "CHARSET",
	OptionMSDP: "MSDP", OptionMSSP: "MSSP", OptionCompress2: "COMPRESS2",
	OptionMSP: "MSP", OptionMXP: "MXP", OptionGMCP: "GMCP",
}

// CommandName returns the mnemonic for a command byte, or its decimal
// value when it has none.
func CommandName(command byte) string {
	if name, ok := commandNames[command]; ok {
		return name
	}
	return fmt.Sprintf("%d", command)
}

// OptionName returns the mnemonic for an option code, or its decimal
// value when it has none.
func OptionName(option byte) string {
	if name, ok := optionNames[option]; ok {
		return name
	}
	return fmt.Sprintf("%d", option)
}

// Negotiation encodes IAC <action> <option>. Action is one of WILL,
// WONT, DO, DONT.
func Negotiation(action, option byte) []byte {
	return []byte{IAC, action, option}
}

// Refusal returns the negative reply to a peer's WILL or DO offer, or
// nil if action is not an offer.
func Refusal(action, option byte) []byte {
	switch action {
	case WILL:
		return Negotiation(DONT, option)
	case DO:
		return Negotiation(WONT, option)
	}
	return nil
}

// EscapeData doubles every IAC byte so data cannot be mistaken for a
// command by the peer. Returns data itself when it contains no IAC.
func EscapeData(data []byte) []byte {
	if bytes.IndexByte(data, IAC) < 0 {
		return data
	}
	escaped := make([]byte, 0, len(data)+8)
	for _, b := range data {
		if b == IAC {
			escaped = append(escaped, IAC)
		}
		escaped = append(escaped, b)
	}
	return escaped
}
