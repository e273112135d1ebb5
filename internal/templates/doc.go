// Package templates scaffolds new rcanvas projects.
//
// # Available Templates
//
//   - static: rcanvas.json and a resources directory for "rcanvas serve"
//   - painter: a Go program with its own painter, plus everything in static
//
// # Usage
//
//	tmpl, err := templates.Get("painter")
//	if err != nil {
//	    return err
//	}
//	if err := tmpl.Create(projectDir, cfg); err != nil {
//	    return err
//	}
//
// # Template Variables
//
//	{{.ProjectName}}  - Name of the project, also the page title
//	{{.ModulePath}}   - Go module path
//	{{.Port}}         - Port written to rcanvas.json
//	{{.FPS}}          - Default frame rate written to rcanvas.json
package templates
