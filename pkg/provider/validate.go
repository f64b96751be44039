package provider

import (
	"fmt"
	"strings"
)

// KnownManagers lists package managers amaris can drive. Kept as a function
// so validation stays in sync with the installer registry.
var KnownManagers = func() []string { return []string{"bun"} }

// Validate checks the document against the provider contract. It returns nil
// when the document is valid; otherwise a ValidationErrors naming every
// offending field path. No side effect ever begins on an invalid document.
func (d Document) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "is required"})
	}
	if strings.TrimSpace(d.Description) == "" {
		errs = append(errs, ValidationError{Field: "description", Message: "is required"})
	}

	manager := strings.TrimSpace(d.PackageManager)
	if manager == "" {
		errs = append(errs, ValidationError{Field: "package_manager", Message: "is required"})
	} else if !managerKnown(manager) {
		errs = append(errs, ValidationError{
			Field:   "package_manager",
			Message: fmt.Sprintf("unsupported value %q (supported: %s)", manager, strings.Join(KnownManagers(), ", ")),
		})
	}

	for i, pkg := range d.Packages {
		if strings.TrimSpace(pkg) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("packages[%d]", i),
				Message: "must not be empty",
			})
		}
	}

	for i, entry := range d.Configuration {
		if strings.TrimSpace(entry.FileLocation) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("configuration[%d].file_location", i),
				Message: "is required",
			})
		}
		if strings.TrimSpace(entry.FileName) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("configuration[%d].file_name", i),
				Message: "is required",
			})
		}
		if strings.TrimSpace(entry.SourceFrom) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("configuration[%d].source_from", i),
				Message: "is required",
			})
		}
	}

	seen := make(map[string]int, len(d.Scripts))
	for i, script := range d.Scripts {
		if strings.TrimSpace(script.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("scripts[%d].name", i),
				Message: "is required",
			})
			continue
		}
		if strings.TrimSpace(script.Script) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("scripts[%d].script", i),
				Message: "is required",
			})
		}
		if prev, dup := seen[script.Name]; dup {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("scripts[%d].name", i),
				Message: fmt.Sprintf("duplicates scripts[%d].name %q", prev, script.Name),
			})
			continue
		}
		seen[script.Name] = i
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func managerKnown(name string) bool {
	for _, m := range KnownManagers() {
		if m == name {
			return true
		}
	}
	return false
}
