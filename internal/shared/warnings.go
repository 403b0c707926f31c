package shared

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// WarningType represents different types of warnings
type WarningType int

const (
	DecodeWarning WarningType = iota
	UnsupportedFileWarning
	PartialFetchWarning
	NoMatchWarning
	RelocateWarning
	LibraryRescanWarning
)

// Warning represents a single warning with context
type Warning struct {
	Type    WarningType
	Message string
	Context string // usually the file path
	Details string
}

// WarningCollector collects non-fatal problems during scans, fetches and
// saves so they can be summarised once at the end. Safe for concurrent use.
type WarningCollector struct {
	mu        sync.Mutex
	warnings  []Warning
	enabled   bool
	immediate bool
}

// NewWarningCollector creates a new warning collector
func NewWarningCollector(enabled bool) *WarningCollector {
	return &WarningCollector{
		warnings: make([]Warning, 0),
		enabled:  enabled,
	}
}

// SetImmediate makes the collector also print each warning as it arrives.
func (wc *WarningCollector) SetImmediate(immediate bool) {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	wc.immediate = immediate
}

// AddWarning adds a warning to the collector
func (wc *WarningCollector) AddWarning(warningType WarningType, context, message, details string) {
	if wc == nil || !wc.enabled {
		return
	}
	wc.mu.Lock()
	defer wc.mu.Unlock()
	if wc.immediate {
		ColorWarning.Printf("⚠️  %s: %s\n", context, message)
	}
	wc.warnings = append(wc.warnings, Warning{
		Type:    warningType,
		Message: message,
		Context: context,
		Details: details,
	})
}

// AddDecodeWarning records a file whose tags could not be decoded.
func (wc *WarningCollector) AddDecodeWarning(path, details string) {
	wc.AddWarning(DecodeWarning, path, "Could not decode tags", details)
}

// AddUnsupportedFileWarning records a file whose container is not supported.
func (wc *WarningCollector) AddUnsupportedFileWarning(path, fileType string) {
	wc.AddWarning(UnsupportedFileWarning, path, "Unsupported file type", fileType)
}

// AddPartialFetchWarning records a remote sub-lookup that failed while the
// rest of the payload was assembled.
func (wc *WarningCollector) AddPartialFetchWarning(path, part, details string) {
	wc.AddWarning(PartialFetchWarning, fmt.Sprintf("%s (%s)", path, part), "Remote lookup failed", details)
}

// AddNoMatchWarning records a file with no remote match.
func (wc *WarningCollector) AddNoMatchWarning(path, query string) {
	wc.AddWarning(NoMatchWarning, path, "No remote match", query)
}

// AddRelocateWarning records a saved file that could not be moved.
func (wc *WarningCollector) AddRelocateWarning(path, details string) {
	wc.AddWarning(RelocateWarning, path, "Could not relocate file", details)
}

// AddLibraryRescanWarning records a failed media server rescan request.
func (wc *WarningCollector) AddLibraryRescanWarning(server, details string) {
	wc.AddWarning(LibraryRescanWarning, server, "Library rescan failed", details)
}

// HasWarnings returns true if there are any warnings
func (wc *WarningCollector) HasWarnings() bool {
	return wc.GetWarningCount() > 0
}

// GetWarningCount returns the total number of warnings
func (wc *WarningCollector) GetWarningCount() int {
	if wc == nil {
		return 0
	}
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return len(wc.warnings)
}

// GetWarningsByType returns warnings grouped by type
func (wc *WarningCollector) GetWarningsByType() map[WarningType][]Warning {
	grouped := make(map[WarningType][]Warning)
	if wc == nil {
		return grouped
	}
	wc.mu.Lock()
	defer wc.mu.Unlock()
	for _, warning := range wc.warnings {
		grouped[warning.Type] = append(grouped[warning.Type], warning)
	}
	return grouped
}

// PrintSummary prints a formatted summary of all warnings
func (wc *WarningCollector) PrintSummary() {
	if !wc.HasWarnings() {
		return
	}

	grouped := wc.GetWarningsByType()
	ColorWarning.Printf("\n⚠️  Warning Summary (%d warnings):\n", wc.GetWarningCount())
	ColorWarning.Println(strings.Repeat("─", 50))

	var types []WarningType
	for warningType := range grouped {
		types = append(types, warningType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, warningType := range types {
		printWarningTypeSection(warningType, grouped[warningType])
	}
}

func printWarningTypeSection(warningType WarningType, warnings []Warning) {
	if len(warnings) == 0 {
		return
	}

	ColorWarning.Printf("\n%s (%d):\n", warningTypeTitle(warningType), len(warnings))

	contextCounts := make(map[string]int)
	details := make(map[string]string)
	for _, warning := range warnings {
		contextCounts[warning.Context]++
		if warning.Details != "" {
			details[warning.Context] = warning.Details
		}
	}

	var contexts []string
	for context := range contextCounts {
		contexts = append(contexts, context)
	}
	sort.Strings(contexts)

	for _, context := range contexts {
		line := "  • " + context
		if count := contextCounts[context]; count > 1 {
			line += fmt.Sprintf(" (×%d)", count)
		}
		if d := details[context]; d != "" {
			line += ": " + d
		}
		ColorWarning.Println(line)
	}
}

func warningTypeTitle(warningType WarningType) string {
	switch warningType {
	case DecodeWarning:
		return "Tag Decode Failures"
	case UnsupportedFileWarning:
		return "Unsupported Files"
	case PartialFetchWarning:
		return "Partial Remote Lookups"
	case NoMatchWarning:
		return "Files Without A Remote Match"
	case RelocateWarning:
		return "Relocation Failures"
	case LibraryRescanWarning:
		return "Library Rescan Failures"
	default:
		return "Other Warnings"
	}
}
