// Package config loads the Configuration struct every other package in this
// module treats as an immutable, shared-by-reference input.
//
// # File format and search order
//
// The configuration file is INI-style with four sections: [servers],
// [object], [kv], and [clients]. Selection follows this order exactly:
//
//  1. $JULEA_CONFIG, if it names an absolute path, is read directly.
//  2. Otherwise $JULEA_CONFIG (or, if unset, the literal name
//     "julea-config") is looked up as $XDG_CONFIG_HOME/julea/<name>.
//  3. Then as julea/<name> under each colon-separated entry of
//     $XDG_CONFIG_DIRS.
//
// The first path that exists and parses is used; exhausting the search
// order without success is a fatal configuration error.
//
// Parsing itself is delegated to gopkg.in/ini.v1, matching the declared INI
// grammar; this package only adds the JULEA-specific search order,
// validation, and defaulting on top.
package config
