// Package tessellate turns an assembled body into triangle meshes using a
// geometry kernel. Parts carry their solids already positioned, so no
// transform bookkeeping happens here.
package tessellate

import (
	"fmt"
	"strings"

	"github.com/chazu/keebgen/pkg/body"
	"github.com/chazu/keebgen/pkg/kernel"
)

// RootName is the PartName given to meshes of a root that is not an
// assembly, and to the merged mesh.
const RootName = "keyboard"

// Tessellate produces one mesh per top-level part of root, in insertion
// order, named after the part. A root that is not an assembly yields a
// single mesh. Parts with an empty solid are skipped. The tessellator
// never mutates the parts.
func Tessellate(root body.Part, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if root == nil {
		return nil, nil
	}
	asm, ok := root.(body.Assembly)
	if !ok {
		m, err := mesh(k, root.Solid(), RootName)
		if err != nil || m == nil {
			return nil, err
		}
		return []*kernel.Mesh{m}, nil
	}

	var meshes []*kernel.Mesh
	for _, name := range asm.Names() {
		p, _ := asm.Part(name)
		m, err := mesh(k, p.Solid(), name)
		if err != nil {
			return nil, err
		}
		if m != nil {
			meshes = append(meshes, m)
		}
	}
	return meshes, nil
}

// Leaves produces one mesh per leaf part, named by its slash-joined path
// ("col0/key1/socket").
func Leaves(root body.Part, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if root == nil {
		return nil, nil
	}
	var meshes []*kernel.Mesh
	err := body.Walk(root, func(path []string, p body.Part) error {
		if _, ok := p.(body.Assembly); ok {
			return nil
		}
		name := strings.Join(path, "/")
		if name == "" {
			name = RootName
		}
		m, err := mesh(k, p.Solid(), name)
		if err != nil {
			return err
		}
		if m != nil {
			meshes = append(meshes, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return meshes, nil
}

// Merged meshes the union of every part of root once.
func Merged(root body.Part, k kernel.Kernel) (*kernel.Mesh, error) {
	if root == nil {
		return nil, nil
	}
	return mesh(k, root.Solid(), RootName)
}

// mesh returns nil for an empty solid.
func mesh(k kernel.Kernel, s kernel.Solid, name string) (*kernel.Mesh, error) {
	if kernel.IsEmpty(s) {
		return nil, nil
	}
	m, err := k.ToMesh(s)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", name, err)
	}
	m.PartName = name
	return m, nil
}
