// Package modkit builds API modules from shared deps and options
package modkit

import "brushline/internal/modkit/module"

// Module is re-exported so module packages depend on modkit alone
type Module = module.Module
