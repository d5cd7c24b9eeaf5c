package discoveryfilter

import "testing"

func TestPathEntry(t *testing.T) {
	tests := []struct {
		path      string
		wantName  string
		wantPath  string
		wantDepth int
	}{
		{"modules", "modules", "modules", 0},
		{"modules/node", "node", "modules/node", 1},
		{"/modules/node/", "node", "modules/node", 1},
		{`sites\default\modules\config`, "config", "sites/default/modules/config", 3},
		{"", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			e := NewPathEntry(tt.path, true)
			if got := e.Name(); got != tt.wantName {
				t.Errorf("Name() = %q, want %q", got, tt.wantName)
			}
			if got := e.RelPath(); got != tt.wantPath {
				t.Errorf("RelPath() = %q, want %q", got, tt.wantPath)
			}
			if got := e.Depth(); got != tt.wantDepth {
				t.Errorf("Depth() = %d, want %d", got, tt.wantDepth)
			}
			if !e.IsDir() {
				t.Error("IsDir() = false, want true")
			}
		})
	}
}
