package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/vango-dev/rcanvas/internal/errors"
)

// Config contains template configuration.
type Config struct {
	// ProjectName is the name of the project.
	ProjectName string

	// ModulePath is the Go module path.
	ModulePath string

	// Port is the port the server listens on.
	Port int

	// FPS is the default frame rate.
	FPS int
}

// Template represents a project template.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Files is a map of relative paths to file contents.
	Files map[string]string

	// Notes are printed after the project is created.
	Notes []string
}

// Available templates.
var templates = map[string]*Template{
	"static":  staticTemplate(),
	"painter": painterTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New("E144").
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: painter, static")
	}
	return tmpl, nil
}

// List returns all available template names in sorted order.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create generates a project from the template.
func (t *Template) Create(dir string, cfg Config) error {
	for relPath, content := range t.Files {
		tmpl, err := template.New(relPath).Delims("[[", "]]").Parse(content)
		if err != nil {
			return errors.Newf(errors.CategoryCLI, "invalid template %s: %v", relPath, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, cfg); err != nil {
			return errors.Newf(errors.CategoryCLI, "template execute error %s: %v", relPath, err)
		}

		fullPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return err
		}

		if err := os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
			return err
		}
	}

	return nil
}

func staticTemplate() *Template {
	return &Template{
		Name:        "static",
		Description: "Configuration and resources for rcanvas serve",
		Files: map[string]string{
			"rcanvas.json":         configFile,
			"resources/index.html": indexFile,
			"resources/style.css":  styleFile,
		},
		Notes: []string{rendererNote},
	}
}

func painterTemplate() *Template {
	files := map[string]string{
		"main.go": painterMain,
	}
	for name, content := range staticTemplate().Files {
		files[name] = content
	}
	return &Template{
		Name:        "painter",
		Description: "A Go program serving its own painter",
		Files:       files,
		Notes:       staticTemplate().Notes,
	}
}

// rendererNote explains the one file index.html needs that is not generated.
const rendererNote = "resources/index.html loads the canvas renderer from websocket.js. " +
	"Copy the renderer script into resources/ before opening the page; rcanvas serves it but does not generate it."

const configFile = `{
  "host": "localhost",
  "port": [[.Port]],
  "websocketPath": "/websocket",
  "resources": {
    "source": "dir",
    "dir": "resources"
  },
  "session": {
    "framesPerSecond": [[.FPS]],
    "keepAlive": "15s"
  },
  "log": {
    "level": "info",
    "format": "text"
  }
}
`

const indexFile = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>[[.ProjectName]]</title>
  <link rel="stylesheet" href="style.css">
</head>
<body>
  <canvas id="canvas"></canvas>
  <!-- The canvas renderer script is not generated; copy it here as websocket.js. -->
  <script src="websocket.js"></script>
</body>
</html>
`

const styleFile = `html, body {
  margin: 0;
  height: 100%;
  overflow: hidden;
}

canvas {
  display: block;
  width: 100%;
  height: 100%;
}
`

const painterMain = `package main

import (
	"log"
	"math"

	"github.com/vango-dev/rcanvas/pkg/assets"
	"github.com/vango-dev/rcanvas/pkg/geom"
	"github.com/vango-dev/rcanvas/pkg/protocol"
	"github.com/vango-dev/rcanvas/pkg/server"
)

// Painter draws a circle wherever the canvas was last clicked.
type Painter struct {
	server.PainterBase

	at geom.Point
}

func (p *Painter) FramesPerSecond() int { return [[.FPS]] }

func (p *Painter) OnClick(l geom.Point) { p.at = l }

func (p *Painter) Update(s *server.Session) {
	size, _ := s.CanvasSize()
	s.Render(
		protocol.ClearRect{Rect: geom.Rect{Size: size}},
		protocol.BeginPath{},
		protocol.Arc{Center: p.at, Radius: 30, EndAngle: 2 * math.Pi},
		protocol.Fill{},
	)
}

func main() {
	cfg := server.DefaultServerConfig().WithAddress(":[[.Port]]")
	srv := server.New(cfg, func() server.Painter { return &Painter{} })
	srv.SetAssets(assets.NewResponder(assets.DirSource("resources"), nil))

	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
`
