// Package utils provides common utility functions for the refdesk application.
// It includes helper functions for converting loosely-typed store values into
// domain field types, and other shared logic that doesn't fit into
// domain-specific packages.
package utils
