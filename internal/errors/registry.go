package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://impulse.vango.dev/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Guard: Watch computations (E101-E109)
	// ============================================

	"E101": {
		Category: CategoryGuard,
		Message:  "Impulse created inside a Watch computation",
		Detail:   "A Watch computation may run many times per change. Create impulses outside of it, or in the onChange callback.",
		DocURL:   docBase + "E101",
	},
	"E102": {
		Category: CategoryGuard,
		Message:  "Impulse cloned inside a Watch computation",
		Detail:   "A Watch computation may run many times per change. Clone impulses outside of it, or in the onChange callback.",
		DocURL:   docBase + "E102",
	},
	"E103": {
		Category: CategoryGuard,
		Message:  "Impulse written inside a Watch computation",
		Detail:   "Watch computations must be read-only. A write would change the dependency set while it is being collected. The write was dropped.",
		DocURL:   docBase + "E103",
	},
	"E104": {
		Category: CategoryGuard,
		Message:  "Impulse subscribed inside a Watch computation",
		Detail:   "Subscriptions made inside a Watch computation leak on every rerun. The subscription was dropped.",
		DocURL:   docBase + "E104",
	},

	// ============================================
	// Guard: transmitting getters (E111-E119)
	// ============================================

	"E111": {
		Category: CategoryGuard,
		Message:  "Impulse created inside a transmitting getter",
		Detail:   "Getters run on every read of the transmitting impulse and must be pure.",
		DocURL:   docBase + "E111",
	},
	"E112": {
		Category: CategoryGuard,
		Message:  "Impulse cloned inside a transmitting getter",
		Detail:   "Getters run on every read of the transmitting impulse and must be pure.",
		DocURL:   docBase + "E112",
	},
	"E113": {
		Category: CategoryGuard,
		Message:  "Impulse written inside a transmitting getter",
		Detail:   "Getters run on every read of the transmitting impulse and must be pure. The write was dropped.",
		DocURL:   docBase + "E113",
	},
	"E114": {
		Category: CategoryGuard,
		Message:  "Impulse subscribed inside a transmitting getter",
		Detail:   "Getters run on every read of the transmitting impulse and must be pure. The subscription was dropped.",
		DocURL:   docBase + "E114",
	},

	// ============================================
	// Configuration (E201-E219)
	// ============================================

	"E201": {
		Category: CategoryConfig,
		Message:  "Failed to read configuration file",
		Detail:   "The configuration file exists but could not be read.",
		DocURL:   docBase + "E201",
	},
	"E202": {
		Category: CategoryConfig,
		Message:  "Failed to parse configuration file",
		Detail:   "The configuration file is not valid JSON or YAML.",
		DocURL:   docBase + "E202",
	},
	"E203": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
		Detail:   "Configuration files must end in .json, .yaml or .yml.",
		DocURL:   docBase + "E203",
	},
	"E204": {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "log.level must be one of debug, info, warn or error.",
		DocURL:   docBase + "E204",
	},
	"E205": {
		Category: CategoryConfig,
		Message:  "Invalid log format",
		Detail:   "log.format must be text or json.",
		DocURL:   docBase + "E205",
	},
	"E206": {
		Category: CategoryConfig,
		Message:  "Invalid guard mode",
		Detail:   "guards.mode must be warn, panic or off.",
		DocURL:   docBase + "E206",
	},
	"E207": {
		Category: CategoryConfig,
		Message:  "Invalid benchmark settings",
		Detail:   "bench.cells, bench.emitters, bench.fanout, bench.batches and bench.batchSize must be positive, and fanout cannot exceed cells.",
		DocURL:   docBase + "E207",
	},
	"E208": {
		Category: CategoryConfig,
		Message:  "Failed to parse environment",
		Detail:   "An IMPULSE_* environment variable holds a value of the wrong type.",
		DocURL:   docBase + "E208",
	},
	"E209": {
		Category: CategoryConfig,
		Message:  "Invalid devtools settings",
		Detail:   "devtools.eventBuffer cannot be negative.",
		DocURL:   docBase + "E209",
	},

	// ============================================
	// CLI (E301-E319)
	// ============================================

	"E301": {
		Category: CategoryCLI,
		Message:  "Invalid output format",
		Detail:   "--output must be text or json.",
		DocURL:   docBase + "E301",
	},
}

// GetAllCodes returns all registered error codes in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
