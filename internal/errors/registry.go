package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid rcanvas.json",
		Detail:   "The rcanvas.json configuration file is malformed.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The configured port number is out of range.",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid frame rate",
		Detail:   "Frame rates must be between 1 and 60 frames per second.",
	},
	"E124": {
		Category: CategoryConfig,
		Message:  "Invalid duration",
		Detail:   "Durations use Go syntax, for example \"15s\" or \"1m30s\".",
	},
	"E125": {
		Category: CategoryConfig,
		Message:  "Invalid resource source",
		Detail:   "Resources are served from a local directory (\"dir\") or an S3 bucket (\"s3\").",
	},
	"E126": {
		Category: CategoryConfig,
		Message:  "Invalid path",
		Detail:   "HTTP paths must start with \"/\" and must not collide.",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Resource directory not found",
		Detail:   "The directory holding the client page and script does not exist.",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Configuration file not found",
		Detail:   "The configuration file given with --config does not exist.",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},
	"E143": {
		Category: CategoryCLI,
		Message:  "Unknown painter",
		Detail:   "The requested demo painter does not exist.",
	},
	"E144": {
		Category: CategoryCLI,
		Message:  "Unknown template",
		Detail:   "The requested project template does not exist.",
	},
	"E145": {
		Category: CategoryCLI,
		Message:  "Directory already exists",
		Detail:   "Projects are created in a new directory.",
	},
	"E146": {
		Category: CategoryCLI,
		Message:  "Invalid project name",
		Detail:   "Project names are used as directory and module names.",
	},
}

// Lookup returns the template for a code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
