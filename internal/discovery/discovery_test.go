package discovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/extdiscovery/internal/discoveryfilter"
	"github.com/taigrr/extdiscovery/internal/walker"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}
}

func names(t *testing.T, svc *Service, paths ...string) map[string]string {
	t.Helper()
	result, err := svc.Scan(context.Background(), paths)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	got := make(map[string]string, len(result.Extensions))
	for _, ext := range result.Extensions {
		got[ext.Name] = ext.SearchPath
	}
	return got
}

func TestService_Scan(t *testing.T) {
	t.Run("single search path", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root,
			"modules/node/node.info.yml",
			"modules/node/tests/modules/node_test/node_test.info.yml",
			"themes/olivero/olivero.info.yml",
			"profiles/standard/standard.info.yml",
		)

		result, err := New(nil, nil).Scan(context.Background(), []string{root})
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}

		want := []struct{ name, typ, path string }{
			{"node", "module", "modules/node"},
			{"olivero", "theme", "themes/olivero"},
			{"standard", "profile", "profiles/standard"},
		}
		if len(result.Extensions) != len(want) {
			t.Fatalf("Scan() returned %d extensions, want %d: %+v", len(result.Extensions), len(want), result.Extensions)
		}
		for i, w := range want {
			ext := result.Extensions[i]
			if ext.Name != w.name || ext.Type != w.typ || ext.Path != w.path {
				t.Errorf("Extensions[%d] = %+v, want name=%s type=%s path=%s", i, ext, w.name, w.typ, w.path)
			}
		}
		if result.Stats.Manifests != 3 {
			t.Errorf("Stats.Manifests = %d, want 3", result.Stats.Manifests)
		}
	})

	t.Run("include tests", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root,
			"modules/node/node.info.yml",
			"modules/node/tests/modules/node_test/node_test.info.yml",
		)

		got := names(t, New(discoveryfilter.New(nil, true), nil), root)
		if _, ok := got["node_test"]; !ok {
			t.Errorf("Scan() = %v, want node_test", got)
		}
	})

	t.Run("module nested in profile", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, "profiles/standard/modules/custom/custom.info.yml")

		result, err := New(nil, nil).Scan(context.Background(), []string{root})
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if len(result.Extensions) != 1 || result.Extensions[0].Type != "module" {
			t.Errorf("Scan() = %+v, want one module", result.Extensions)
		}
	})
}

func TestService_ScanOverrides(t *testing.T) {
	t.Run("later search path wins", func(t *testing.T) {
		core := t.TempDir()
		site := t.TempDir()
		writeTree(t, core, "modules/config/config.info.yml", "modules/node/node.info.yml")
		writeTree(t, site, "modules/config/config.info.yml")

		svc := New(nil, nil)
		result, err := svc.Scan(context.Background(), []string{core, site})
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}

		byName := map[string]string{}
		for _, ext := range result.Extensions {
			byName[ext.Name] = ext.SearchPath
		}
		if byName["config"] != site {
			t.Errorf("config from %q, want %q", byName["config"], site)
		}
		if byName["node"] != core {
			t.Errorf("node from %q, want %q", byName["node"], core)
		}
		if len(result.Overridden) != 1 || result.Overridden[0].SearchPath != core {
			t.Errorf("Overridden = %+v, want core config", result.Overridden)
		}
	})

	t.Run("order of search paths matters", func(t *testing.T) {
		a := t.TempDir()
		b := t.TempDir()
		writeTree(t, a, "modules/x/x.info.yml")
		writeTree(t, b, "themes/x/x.info.yml")

		if got := names(t, New(nil, nil), a, b)["x"]; got != b {
			t.Errorf("x from %q, want %q", got, b)
		}
		if got := names(t, New(nil, nil), b, a)["x"]; got != a {
			t.Errorf("x from %q, want %q", got, a)
		}
	})

	t.Run("shallowest wins within a search path", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root,
			"modules/contrib/deep/views/views.info.yml",
			"modules/views/views.info.yml",
		)

		result, err := New(nil, nil).Scan(context.Background(), []string{root})
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if len(result.Extensions) != 1 {
			t.Fatalf("Scan() returned %d extensions, want 1", len(result.Extensions))
		}
		if got := result.Extensions[0].Path; got != "modules/views" {
			t.Errorf("Path = %q, want modules/views", got)
		}
	})
}

func TestService_ScanErrors(t *testing.T) {
	t.Run("no search paths", func(t *testing.T) {
		_, err := New(nil, nil).Scan(context.Background(), nil)
		if !errors.Is(err, ErrNoSearchPaths) {
			t.Errorf("Scan() error = %v, want ErrNoSearchPaths", err)
		}
	})

	t.Run("missing search path is skipped", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, "modules/a/a.info.yml")
		got := names(t, New(nil, nil), filepath.Join(root, "missing"), root)
		if len(got) != 1 {
			t.Errorf("Scan() = %v, want one extension", got)
		}
	})

	t.Run("search path is a file", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, "file.txt")
		_, err := New(nil, nil).Scan(context.Background(), []string{filepath.Join(root, "file.txt")})

		var scanErr *ScanError
		if !errors.As(err, &scanErr) {
			t.Fatalf("Scan() error = %v, want *ScanError", err)
		}
		if !errors.Is(err, walker.ErrNotDirectory) {
			t.Errorf("Scan() error = %v, want ErrNotDirectory", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, "modules/a/a.info.yml")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New(nil, nil).Scan(ctx, []string{root})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Scan() error = %v, want context.Canceled", err)
		}
	})
}

func TestService_ScanSymlinkedSearchPath(t *testing.T) {
	dir := t.TempDir()
	site := filepath.Join(dir, "release-1")
	writeTree(t, site, "modules/node/node.info.yml")
	link := filepath.Join(dir, "current")
	if err := os.Symlink(site, link); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}

	result, err := New(nil, nil).Scan(context.Background(), []string{link})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(result.Extensions) != 1 {
		t.Fatalf("Scan() found %d extensions, want 1", len(result.Extensions))
	}
	ext := result.Extensions[0]
	if ext.Name != "node" || ext.Path != "modules/node" {
		t.Errorf("extension = %+v, want node at modules/node", ext)
	}
	if ext.SearchPath != link {
		t.Errorf("SearchPath = %q, want %q", ext.SearchPath, link)
	}
}
