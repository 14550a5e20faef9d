package parts

import (
	"fmt"

	"github.com/chazu/keebgen/pkg/body"
	"github.com/chazu/keebgen/pkg/config"
	"github.com/chazu/keebgen/pkg/kernel"
)

// Child part names inside a key.
const (
	SocketPart = "socket"
	CapPart    = "cap"
)

// KeyBuilder builds one key for a row profile. The returned assembly must
// hold a SocketPart child.
type KeyBuilder interface {
	BuildKey(p Profile) (body.Assembly, error)
}

// FaceAlignedKey builds keys whose reference frame is the socket's top
// face: the key's own anchors are a copy of the socket's.
type FaceAlignedKey struct {
	Kernel kernel.Kernel
	Key    config.Key
	Socket config.Socket
}

var _ KeyBuilder = (*FaceAlignedKey)(nil)

// NewFaceAlignedKey returns a KeyBuilder for the given dimensions.
func NewFaceAlignedKey(k kernel.Kernel, key config.Key, socket config.Socket) *FaceAlignedKey {
	return &FaceAlignedKey{Kernel: k, Key: key, Socket: socket}
}

// BuildKey returns a socket plus the keycap for profile p.
func (f *FaceAlignedKey) BuildKey(p Profile) (body.Assembly, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("parts: unknown key profile %d", p)
	}
	socket, err := Socket(f.Kernel, f.Socket)
	if err != nil {
		return nil, err
	}
	keycap, err := Cap(f.Kernel, f.Key, p)
	if err != nil {
		return nil, err
	}

	key, err := body.NewComposite(f.Kernel, socket.Anchors().Clone())
	if err != nil {
		return nil, err
	}
	if err := key.Add(SocketPart, socket); err != nil {
		return nil, err
	}
	if err := key.Add(CapPart, keycap); err != nil {
		return nil, err
	}
	return key, nil
}
