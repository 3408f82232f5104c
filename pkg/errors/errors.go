// Package errors defines the error types returned by peakmap. Every type
// matches one of the sentinel errors with errors.Is, and the Is* helpers
// check for them through any amount of wrapping.
package errors

import (
	"errors"
	"fmt"
)

// New is errors.New, re-exported so callers need one errors import.
var New = errors.New

// Sentinels matched by the error types below.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingSource   = errors.New("missing source")
	ErrInvalidGeometry = errors.New("invalid geometry")
	ErrCanceled        = errors.New("operation canceled")
)

// NotFoundError reports an unknown peak, region or other record.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError reports an option, flag or config value out of range.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// Is matches ErrInvalidInput.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// ConfigError reports a rules, overrides or config file that cannot be used.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Component == "" {
		return "configuration error: " + e.Message
	}
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// SourceError reports a source table or region file that cannot be read.
// It always aborts a build.
type SourceError struct {
	Source string // anchor, survey, registry or regions
	Path   string
	Err    error
}

func (e *SourceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("source %s (%s) unavailable: %v", e.Source, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Is matches ErrMissingSource.
func (e *SourceError) Is(target error) bool { return target == ErrMissingSource }

// NewSourceError creates a SourceError.
func NewSourceError(source, path string, err error) *SourceError {
	return &SourceError{Source: source, Path: path, Err: err}
}

// GeometryError reports a region boundary that is not a simple polygon.
type GeometryError struct {
	RegionID string
	Message  string
}

func (e *GeometryError) Error() string {
	if e.RegionID == "" {
		return "invalid geometry: " + e.Message
	}
	return fmt.Sprintf("invalid geometry for region %s: %s", e.RegionID, e.Message)
}

// Is matches ErrInvalidGeometry and ErrInvalidInput.
func (e *GeometryError) Is(target error) bool {
	return target == ErrInvalidGeometry || target == ErrInvalidInput
}

// NewGeometryError creates a GeometryError.
func NewGeometryError(regionID, message string) *GeometryError {
	return &GeometryError{RegionID: regionID, Message: message}
}

// ParseError reports malformed dsv, geojson or yaml input.
type ParseError struct {
	Format  string
	File    string
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	case e.File != "":
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	default:
		return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError creates a ParseError.
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// IOError reports a failed read or write of an output or input file.
type IOError struct {
	Operation string // read, write, create, open
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("IO error during %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IsNotFound reports whether err matches ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidationError reports whether err matches ErrInvalidInput.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsMissingSource reports whether err matches ErrMissingSource.
func IsMissingSource(err error) bool { return errors.Is(err, ErrMissingSource) }

// IsInvalidGeometry reports whether err matches ErrInvalidGeometry.
func IsInvalidGeometry(err error) bool { return errors.Is(err, ErrInvalidGeometry) }

// IsCanceled reports whether err matches ErrCanceled.
func IsCanceled(err error) bool { return errors.Is(err, ErrCanceled) }

// The Wrap helpers return nil for a nil err.

// WrapIO wraps err in an IOError.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// WrapParse wraps err in a ParseError.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapSource wraps err in a SourceError.
func WrapSource(source, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewSourceError(source, path, err)
}

// WrapCanceled marks a context error as a cancellation of operation.
func WrapCanceled(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, ErrCanceled, err)
}
