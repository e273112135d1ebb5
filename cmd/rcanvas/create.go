package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/rcanvas/internal/config"
	"github.com/vango-dev/rcanvas/internal/errors"
	"github.com/vango-dev/rcanvas/internal/templates"
)

func createCmd() *cobra.Command {
	var (
		template string
		module   string
		port     int
		fps      int
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new rcanvas project",
		Long: `Create a new rcanvas project with the specified name.

Templates:
  painter   A Go program serving its own painter (default)
  static    Just rcanvas.json and resources for "rcanvas serve"

Examples:
  rcanvas create my-canvas
  rcanvas create my-canvas --template=static
  rcanvas create my-canvas --module=github.com/me/my-canvas`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(args[0], template, templates.Config{
				ProjectName: args[0],
				ModulePath:  module,
				Port:        port,
				FPS:         fps,
			})
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "painter", "Project template (painter, static)")
	cmd.Flags().StringVarP(&module, "module", "m", "", "Go module path (default: the project name)")
	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "Port written to rcanvas.json")
	cmd.Flags().IntVar(&fps, "fps", 10, "Default frames per second")

	return cmd
}

func runCreate(name, templateName string, cfg templates.Config) error {
	if !isValidProjectName(name) {
		return errors.New("E146").
			WithDetail("'" + name + "' cannot be used as a directory name").
			WithSuggestion("Use lowercase letters, numbers, and hyphens")
	}

	tmpl, err := templates.Get(templateName)
	if err != nil {
		return err
	}

	projectDir, err := filepath.Abs(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(projectDir); !os.IsNotExist(err) {
		return errors.New("E145").
			WithDetail("Directory '" + name + "' already exists").
			WithSuggestion("Choose a different name or remove the existing directory")
	}

	if cfg.ModulePath == "" {
		cfg.ModulePath = name
	}

	printBanner()
	info("Creating project from '%s' template...", templateName)
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return err
	}
	if err := tmpl.Create(projectDir, cfg); err != nil {
		os.RemoveAll(projectDir)
		return err
	}

	if templateName == "painter" {
		info("Initializing Go module...")
		if err := goCommand(projectDir, "mod", "init", cfg.ModulePath); err != nil {
			warn("Could not run 'go mod init': %v", err)
		} else if err := goCommand(projectDir, "mod", "tidy"); err != nil {
			warn("Could not run 'go mod tidy': %v", err)
		}
	}

	fmt.Println()
	success("Created %s/", name)
	fmt.Println()
	fmt.Println("  To get started:")
	fmt.Println()
	fmt.Printf("    cd %s\n", name)
	if templateName == "painter" {
		fmt.Println("    go run .")
	} else {
		fmt.Println("    rcanvas serve")
	}
	fmt.Println()
	for _, note := range tmpl.Notes {
		warn("%s", note)
	}

	return nil
}

func goCommand(dir string, args ...string) error {
	if _, err := exec.LookPath("go"); err != nil {
		return err
	}
	cmd := exec.Command("go", args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func isValidProjectName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	for i, r := range name {
		if r == ' ' || r == '/' || r == '\\' {
			return false
		}
		if i == 0 && r >= '0' && r <= '9' {
			return false
		}
	}
	return true
}
