// Package dtu implements the TCP wire protocol spoken by Hoymiles-family
// solar micro-inverter DTU gateways: frame codec, optional AES-128-GCM
// encryption, single-in-flight request engine, and the multi-page
// response assembly used by a handful of operations. See the subpackage
// schema for the request/response payload bodies carried inside frames.
package dtu
