package rules

// Import all plugin packages to register them with the global registry.
// This file triggers all init() functions in the plugin packages.
import (
	_ "github.com/leapstack-labs/nocycle/pkg/lint/rules/imports"
)
