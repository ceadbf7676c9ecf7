// Package core defines the shared language of the nocycle system.
//
// This package contains:
//   - Severity levels and their ESLint-style spellings (off/warn/error, 0/1/2)
//   - Source positions used by diagnostics
//   - Rule metadata (RuleInfo) for documentation and tooling
//   - The raw lint configuration shape decoded from config files
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
