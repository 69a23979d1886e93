// Package config defines the installer settings and provides helpers to load,
// validate and save them in YAML format.
//
// Every field is optional: Validate fills in the public Chrome for Testing
// endpoints, the default timeout and the default log settings.
package config
