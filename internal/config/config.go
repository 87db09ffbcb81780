// Package config loads the jail launcher's host-wide policy file: the
// GLib key-file-style document that an administrator, not the invoking
// user, controls, governing things an unprivileged caller must not be
// able to override (whether no-new-privs may be waived, the default
// tmpfs ceiling, whether launches default to a private network
// namespace).
package config

import (
	"fmt"

	"github.com/mvo5/goconfigparser"
)

const (
	groupPermissions = "Permissions"
	groupDefaults    = "Defaults"

	keyAllowNewPrivs = "PermitAllowNewPrivs"
	keyMaxTmpfsSize  = "MaxTmpfsSize"
	keyPrivateNet    = "PrivateNetwork"
	keyRunMode       = "Run"
	keyRunMedia      = "RunMedia"
)

// RunMode selects whether a launch's /run is jail-private or shared
// with the host's.
type RunMode string

const (
	RunPrivate RunMode = "private"
	RunHost    RunMode = "host"
)

func parseRunMode(s string) (RunMode, error) {
	switch RunMode(s) {
	case RunPrivate, RunHost:
		return RunMode(s), nil
	default:
		return "", fmt.Errorf("unknown run mode %q", s)
	}
}

// Config is the parsed policy file. Every field has a spelled-out
// default so a missing file section, or a missing key within a present
// section, behaves exactly like an explicit default value -- the same
// forgiving-default policy the original key-file reader used.
//
// RunModeDefault and BindRunMediaDefault are parsed and validated but not
// currently consumed by internal/launch or internal/jail: the jail
// pipeline's sensitive-path overlay set (/tmp, /var/tmp, /home) is a fixed,
// closed list, and extending it to cover /run or /media would change that
// pipeline's contract rather than add to it. They're kept on Config,
// validated the same as every other key, so a malformed value in either
// still fails Load the way it would for any other policy key -- a future
// /run- or /media-aware overlay step would read them from here rather than
// needing a new loader.
type Config struct {
	AllowNewPrivsPermitted bool
	PrivateNetworkDefault  bool
	RunModeDefault         RunMode
	BindRunMediaDefault    bool
	MaxTmpfsSize           string // empty means "no ceiling configured"
}

func defaults() Config {
	return Config{
		AllowNewPrivsPermitted: false,
		PrivateNetworkDefault:  false,
		RunModeDefault:         RunPrivate,
		BindRunMediaDefault:    false,
	}
}

// Load reads and validates the policy file at path. It refuses to trust
// a file (or a directory in its ancestry) that isn't owned by root and
// writable only by its owner, since the whole point of a host-controlled
// policy file is that an unprivileged invoker can't edit it.
func Load(path string) (*Config, error) {
	if err := CheckPermissions(path); err != nil {
		return nil, fmt.Errorf("refusing untrusted configuration file: %w", err)
	}

	cfg := goconfigparser.New()
	if err := cfg.ReadFile(path); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	out := defaults()

	if v, err := getBool(cfg, groupPermissions, keyAllowNewPrivs, out.AllowNewPrivsPermitted); err != nil {
		return nil, err
	} else {
		out.AllowNewPrivsPermitted = v
	}

	if v, err := getBool(cfg, groupDefaults, keyPrivateNet, out.PrivateNetworkDefault); err != nil {
		return nil, err
	} else {
		out.PrivateNetworkDefault = v
	}

	if v, err := getBool(cfg, groupDefaults, keyRunMedia, out.BindRunMediaDefault); err != nil {
		return nil, err
	} else {
		out.BindRunMediaDefault = v
	}

	if s, err := cfg.Get(groupDefaults, keyRunMode); err == nil && s != "" {
		mode, err := parseRunMode(s)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", groupDefaults, keyRunMode, err)
		}
		out.RunModeDefault = mode
	}

	if s, err := cfg.Get(groupPermissions, keyMaxTmpfsSize); err == nil {
		out.MaxTmpfsSize = s
	}

	return &out, nil
}

func getBool(cfg *goconfigparser.ConfigParser, section, key string, def bool) (bool, error) {
	if s, err := cfg.Get(section, key); err != nil || s == "" {
		// A missing section or key in a GLib-style key file is an
		// absent setting, not a malformed one; fall back to the
		// caller's default the same way the original reader did.
		return def, nil
	}
	v, err := cfg.Getbool(section, key)
	if err != nil {
		return def, fmt.Errorf("%s.%s: %w", section, key, err)
	}
	return v, nil
}
