// Package types provides core types shared across the ragserve service.
// This package has ZERO dependencies on other ragserve packages to avoid
// circular imports. All other packages should import types from here.
package types
