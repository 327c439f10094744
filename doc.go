// Package plist implements encoding and decoding of Apple's binary
// property lists (bplist00).
//
// A property list is a tree of Value nodes. EncodeBinary flattens a tree
// into a table of unique objects, sharing every structurally equal
// subtree, and DecodeBinary reads such a table back into a tree.
//
// Marshal and Unmarshal bridge Go values and property lists by
// reflection; Marshal also writes XML property lists. Archiver reads and
// writes NSKeyedArchiver payloads on top of the binary format.
package plist
