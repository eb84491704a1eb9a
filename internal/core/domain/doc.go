// Package domain contains the core business types for semdex.
// It has no dependencies on adapters or infrastructure.
package domain
