// Package protocol owns the wire primitives shared by the frame codec.
//
// Ownership boundary:
// - LEB128 varint encode/decode for the frame total_size field
// - byte order selection for the u32 segment length prefix
// - segment and frame packages build on these primitives
package protocol
