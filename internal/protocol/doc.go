// Package protocol defines the wire format of the chat protocol.
//
// Inbound frames are parsed into a tagged Frame (size guard first, then JSON decode).
// Outbound traffic is built from immutable Envelope values that serialize identically
// to every recipient. Sanitize provides the best-effort HTML escaping applied to all
// client-supplied text.
package protocol
