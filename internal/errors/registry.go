package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be read or parsed.",
		DocURL:   "https://vango.dev/docs/errors/E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid environment configuration",
		Detail:   "An environment variable could not be parsed into its configuration field.",
		DocURL:   "https://vango.dev/docs/errors/E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or malformed.",
		DocURL:   "https://vango.dev/docs/errors/E122",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Invalid output target",
		Detail:   "The output target must be a file path, '-' for stdout, or an s3://bucket/key URL.",
		DocURL:   "https://vango.dev/docs/errors/E140",
	},

	// ============================================
	// Export Errors (E180-E199)
	// ============================================

	"E180": {
		Category: CategoryExport,
		Message:  "Export failed",
		Detail:   "The rendered markup could not be written to its destination.",
		DocURL:   "https://vango.dev/docs/errors/E180",
	},

	// ============================================
	// Render Errors (E200-E219)
	// ============================================

	"E200": {
		Category: CategoryRender,
		Message:  "Component suspended while rendering, but no fallback UI was specified",
		Detail:   "A component waited on a deferred value, or is client-only, and no Suspense boundary encloses it.",
		DocURL:   "https://vango.dev/docs/errors/E200",
	},
	"E201": {
		Category: CategoryRender,
		Message:  "Component render failed",
		Detail:   "A component returned an error or panicked while rendering. The whole render is aborted.",
		DocURL:   "https://vango.dev/docs/errors/E201",
	},
	"E202": {
		Category: CategoryRender,
		Message:  "Deferred value rejected",
		Detail:   "A deferred value a component was waiting on failed. The whole render is aborted.",
		DocURL:   "https://vango.dev/docs/errors/E202",
	},
	"E203": {
		Category: CategoryRender,
		Message:  "Suspended on an unrecognized value",
		Detail:   "A component suspended on a value that does not implement Done() and Result().",
		DocURL:   "https://vango.dev/docs/errors/E203",
	},
	"E204": {
		Category: CategoryRender,
		Message:  "Render canceled",
		Detail:   "The context of the render was canceled before all deferred values settled.",
		DocURL:   "https://vango.dev/docs/errors/E204",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a custom error template.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
