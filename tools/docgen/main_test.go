package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cli")
	if err := generate(dir); err != nil {
		t.Fatalf("generate() error = %v", err)
	}

	for _, name := range []string{"shc.md", "shc_login.md", "shc_items_browse.md", "shc_mine_edit.md", "shc_sell.md"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}
