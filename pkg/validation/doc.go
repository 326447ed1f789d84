// Package validation evaluates registration answers against the rules a
// question declares: is_required and validation_regex. Violations are
// returned as data (model.ValidationResult), never as Go errors.
package validation
