package modkit

import "curator/internal/modkit/module"

// Module is the contract every service module satisfies; see package module
type Module = module.Module
