// Package shared provides common utilities and test helpers used across
// the vapeidx codebase. It is a home for generic functionality that does
// not belong to any specific pipeline stage.
//
// The testutil subpackage provides log-capture helpers for asserting on
// structured log output in tests. Nothing here carries business logic.
package shared
