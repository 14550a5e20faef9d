package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/keebgen/pkg/kernel"
	"github.com/chazu/keebgen/pkg/kernel/kerneltest"
)

// run executes the CLI with a recording kernel so no command tessellates
// with sdfx.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	orig := newKernel
	newKernel = func(name string, _ int) (kernel.Kernel, error) {
		if name != kernelSDFX {
			return orig(name, 0)
		}
		return kerneltest.New(), nil
	}
	t.Cleanup(func() { newKernel = orig })

	root := newRootCmd()
	var out, errb bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errb)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), errb.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSetVersion(t *testing.T) {
	defer SetVersion("dev", "", "")
	SetVersion("1.0.0", "abc123", "2024-01-01")

	if version != "1.0.0" || commit != "abc123" || date != "2024-01-01" {
		t.Errorf("SetVersion did not update: %q %q %q", version, commit, date)
	}
}

func TestVersionCommand(t *testing.T) {
	defer SetVersion("dev", "", "")
	SetVersion("v1.2.3", "abc123", "2026-01-01")

	out, _, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"keebgen v1.2.3", "commit: abc123", "built: 2026-01-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("version output missing %q:\n%s", want, out)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"build", "stl", "mesh", "graph", "config", "version"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("verbose") == nil {
		t.Error("missing --verbose flag")
	}
}

func TestOpenOutput(t *testing.T) {
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)

	w, closeFn, err := openOutput(root, "-")
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("hi"))
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "hi" {
		t.Errorf("stdout = %q, want %q", buf.String(), "hi")
	}

	path := filepath.Join(t.TempDir(), "out.txt")
	w, closeFn, err = openOutput(root, path)
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("file"))
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "file" {
		t.Errorf("file = %q, want %q", data, "file")
	}
}

func TestKernelFlag(t *testing.T) {
	// The default build carries the manifold stub.
	_, _, err := run(t, "build", "--kernel", "manifold")
	if err == nil || !strings.Contains(err.Error(), "manifold") {
		t.Errorf("expected the manifold stub error, got %v", err)
	}

	_, _, err = run(t, "build", "--kernel", "cgal")
	if err == nil || !strings.Contains(err.Error(), "unknown kernel") {
		t.Errorf("expected unknown kernel error, got %v", err)
	}
}
