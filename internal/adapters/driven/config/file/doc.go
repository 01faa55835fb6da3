// Package file persists deckmend settings as a TOML file.
//
// Keys are dotted paths. Each dot opens a table, so
// "stages.nv-ids.include_layouts" is written as
//
//	[stages.nv-ids]
//	include_layouts = true
//
// The file lives in ~/.deckmend/config.toml unless another directory is given.
package file
