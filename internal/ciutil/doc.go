// Package ciutil detects CI environments and reads settings that may come
// from more than one environment variable.
package ciutil
