// Package registry keeps decorators addressable by name.
package registry
