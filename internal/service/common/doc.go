// Package common holds helpers shared by several services.
//
// It provides Runner, the single place where external commands are started,
// their output captured and their failures turned into ExecError values.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
