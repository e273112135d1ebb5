package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetUnknownTemplate(t *testing.T) {
	if _, err := Get("nope"); err == nil || !strings.Contains(err.Error(), "E144") {
		t.Fatalf("Get(nope) error=%v, want E144", err)
	}
}

func TestList(t *testing.T) {
	got := List()
	if len(got) != 2 || got[0] != "painter" || got[1] != "static" {
		t.Fatalf("List()=%v, want [painter static]", got)
	}
}

func TestStaticTemplate(t *testing.T) {
	dir := t.TempDir()
	tmpl, err := Get("static")
	if err != nil {
		t.Fatal(err)
	}
	if err := tmpl.Create(dir, Config{ProjectName: "demo", Port: 9000, FPS: 24}); err != nil {
		t.Fatal(err)
	}

	cfg := readFile(t, filepath.Join(dir, "rcanvas.json"))
	for _, want := range []string{`"port": 9000`, `"framesPerSecond": 24`} {
		if !strings.Contains(cfg, want) {
			t.Errorf("rcanvas.json missing %q:\n%s", want, cfg)
		}
	}
	if page := readFile(t, filepath.Join(dir, "resources", "index.html")); !strings.Contains(page, "<title>demo</title>") {
		t.Errorf("index.html missing title:\n%s", page)
	}
	if _, err := os.Stat(filepath.Join(dir, "main.go")); !os.IsNotExist(err) {
		t.Error("static template wrote main.go")
	}
}

func TestPainterTemplate(t *testing.T) {
	dir := t.TempDir()
	tmpl, err := Get("painter")
	if err != nil {
		t.Fatal(err)
	}
	if err := tmpl.Create(dir, Config{ProjectName: "demo", ModulePath: "example.com/demo", Port: 8080, FPS: 30}); err != nil {
		t.Fatal(err)
	}

	main := readFile(t, filepath.Join(dir, "main.go"))
	for _, want := range []string{"return 30", `WithAddress(":8080")`, "package main"} {
		if !strings.Contains(main, want) {
			t.Errorf("main.go missing %q", want)
		}
	}
	if strings.Contains(main, "[[") {
		t.Error("main.go has unexpanded template actions")
	}
	readFile(t, filepath.Join(dir, "resources", "style.css"))
}

func TestTemplatesExplainRendererScript(t *testing.T) {
	for _, name := range List() {
		tmpl, err := Get(name)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(tmpl.Files["resources/index.html"], `src="websocket.js"`) {
			continue
		}
		if _, ok := tmpl.Files["resources/websocket.js"]; ok {
			continue
		}
		noted := false
		for _, note := range tmpl.Notes {
			if strings.Contains(note, "websocket.js") {
				noted = true
			}
		}
		if !noted {
			t.Errorf("%s: index.html loads websocket.js but no note says where it comes from", name)
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
