package cmd

import (
	"github.com/eykd/entitygraph-go/internal/entity"
)

// hasSeverityError is the canonical check: true when sev matches the error severity constant.
func hasSeverityError(sev string) bool {
	return sev == entity.SeverityError
}

// hasDiagnosticError reports whether any diagnostic in diags has error severity.
func hasDiagnosticError(diags []entity.Diagnostic) bool {
	for _, d := range diags {
		if hasSeverityError(d.Severity) {
			return true
		}
	}
	return false
}
