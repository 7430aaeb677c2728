// Package lib provide small helpers shared by mpool packages and tools,
// settings map, sample statistics and raw memory copy. They are
// self-contained and shall not depend on other mpool packages.
package lib
