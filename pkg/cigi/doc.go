/*
Package cigi implements the subset of the Common Image Generator Interface
(CIGI 3.3) wire format the IG kernel needs.

A CIGI message is a concatenation of packets, each starting with a one-byte
packet ID and a one-byte packet size. Messages from the Host start with an IG
Control packet; messages from the IG start with a Start-Of-Frame packet. Both
carry a byte-swap magic that tells the receiver which byte order was used.

IG Control and Start-Of-Frame are decoded field by field. Every other packet
type is delivered as a RawPacket so that plugins can decode what they need.

Incoming dispatches decoded packets to registered handlers. Outgoing
accumulates the packets of one frame and serializes them, frame header first.
*/
package cigi
