// Package config holds policyscan's runtime options.
//
// Options come from three places, later ones winning: the YAML file
// (.policyscan in the current or home directory, or --config), the
// environment (optionally seeded from .env files), and command-line flags.
// The file can add known policy URLs, override the keyword tables, add
// platform profiles and point at a model backend. The backend API key is
// only ever read from the environment.
package config
