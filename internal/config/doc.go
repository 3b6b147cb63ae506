// Package config provides loading and validation for soyuznikrr
// configuration. Values merge defaults-first: built-in defaults, then an
// optional YAML file, then SOYUZNIKRR_-prefixed environment variables
// (nested keys separated by double underscores).
//
// Example:
//
//	cfg, err := config.Load("/etc/soyuznikrr/config.yaml")
//	if err != nil {
//	    return err
//	}
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
package config
