package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/pandeptwidyaop/hostkit/internal/privileged"
)

// EnvSudoUser is set by sudo to the name of the user who invoked it.
const EnvSudoUser = "SUDO_USER"

var (
	// ErrIdentityUnresolved indicates the invoking user could not be determined.
	ErrIdentityUnresolved = errors.New("could not determine invoking user")
	// ErrHomeUnresolved indicates the invoking user has no usable home directory.
	ErrHomeUnresolved = errors.New("could not determine home directory")
)

// Identity is the non-elevated user on whose behalf files are written.
type Identity struct {
	Username string
	UID      string
	GID      string
	Home     string
}

// Owner is the uid/gid pair new backups are handed to.
func (i Identity) Owner() privileged.Owner {
	return privileged.Owner{UID: i.UID, GID: i.GID}
}

// UserLookup is the subset of os/user used for identity resolution.
type UserLookup interface {
	Current() (*user.User, error)
	Lookup(username string) (*user.User, error)
}

// OSUsers resolves users through os/user.
type OSUsers struct{}

func (OSUsers) Current() (*user.User, error)            { return user.Current() }
func (OSUsers) Lookup(name string) (*user.User, error) { return user.Lookup(name) }

// ResolveIdentity prefers the user named by SUDO_USER over the effective user
// so that a tool started with sudo still writes backups for the real user.
func ResolveIdentity(getenv func(string) string, users UserLookup) (Identity, error) {
	var (
		u   *user.User
		err error
	)
	if name := getenv(EnvSudoUser); name != "" {
		u, err = users.Lookup(name)
	} else {
		u, err = users.Current()
	}
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrIdentityUnresolved, err)
	}

	if u.HomeDir == "" || !filepath.IsAbs(u.HomeDir) {
		return Identity{}, fmt.Errorf("%w for user %q", ErrHomeUnresolved, u.Username)
	}
	info, err := os.Stat(u.HomeDir)
	if err != nil || !info.IsDir() {
		return Identity{}, fmt.Errorf("%w for user %q: %s is not a directory", ErrHomeUnresolved, u.Username, u.HomeDir)
	}

	return Identity{
		Username: u.Username,
		UID:      u.Uid,
		GID:      u.Gid,
		Home:     u.HomeDir,
	}, nil
}

// Env is the process-wide state resolved once at start-up and passed to every
// operation.
type Env struct {
	Config     *Config
	Identity   Identity
	ConfigPath string
}

// Setup resolves the identity and loads the config file for it.
func Setup(configFlag string, getenv func(string) string, users UserLookup) (*Env, error) {
	id, err := ResolveIdentity(getenv, users)
	if err != nil {
		return nil, err
	}

	path := ResolvePath(configFlag, id.Home, getenv)
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	return &Env{Config: cfg, Identity: id, ConfigPath: path}, nil
}

// BackupDir is the snapshot directory; relative config values live under home.
func (e *Env) BackupDir() string {
	return e.underHome(e.Config.BackupDir)
}

// OriginalPath is the user-maintained restore baseline.
func (e *Env) OriginalPath() string {
	return filepath.Join(e.BackupDir(), OriginalName)
}

// JournalPath is the operation journal; relative values live in BackupDir.
func (e *Env) JournalPath() string {
	if filepath.IsAbs(e.Config.Journal.Path) {
		return e.Config.Journal.Path
	}
	return filepath.Join(e.BackupDir(), e.Config.Journal.Path)
}

func (e *Env) underHome(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.Identity.Home, p)
}

// OriginalName is the fixed file name of the restore baseline.
const OriginalName = "hosts.original"
