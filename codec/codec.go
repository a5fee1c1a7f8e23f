// Package codec encodes snapshot manifests.
//
// A manifest records the name of the codec that wrote it, so a store can
// read snapshots written with a codec other than its configured one.
// Renaming a codec breaks existing snapshots.
package codec

import "errors"

// ErrUnknown is returned by Lookup for a name no built-in codec carries.
var ErrUnknown = errors.New("codec: unknown codec")

// Codec encodes and decodes values. Implementations must be safe for
// concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns the built-in codec with the given stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case JSON{}.Name():
		return JSON{}, true
	case GoJSON{}.Name():
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Lookup is ByName with an error for unknown names.
func Lookup(name string) (Codec, error) {
	c, ok := ByName(name)
	if !ok {
		return nil, errors.Join(ErrUnknown, errors.New(name))
	}
	return c, nil
}

// Default is used for new manifests when no codec is configured.
var Default Codec = GoJSON{}
