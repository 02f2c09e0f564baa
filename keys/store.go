package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// KeyStore keeps Ed25519 seeds for team signing keys on the local filesystem.
//
// EXPERIMENTAL: layout and API may change.
//
// Layout:
//
//	<Directory>/<name>/root.key          hex seed, 0600
//	<Directory>/<name>/roles/<role>.key  derived hex seed, 0600
type KeyStore struct {
	Directory string
}

// KeyEntry lists a stored root key and the roles derived from it.
type KeyEntry struct {
	Name  string
	Roles []string
}

// DefaultDirectory is ~/.xdao/teamchain/keys.
func DefaultDirectory() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".xdao", "teamchain", "keys"), nil
}

// OpenKeyStore returns a store rooted at directory, or at DefaultDirectory when empty.
func OpenKeyStore(directory string) (*KeyStore, error) {
	if directory == "" {
		var err error
		if directory, err = DefaultDirectory(); err != nil {
			return nil, err
		}
	}
	return &KeyStore{Directory: directory}, nil
}

func (ks *KeyStore) rootPath(name string) string {
	return filepath.Join(ks.Directory, name, "root.key")
}

func (ks *KeyStore) rolePath(name, role string) string {
	return filepath.Join(ks.Directory, name, "roles", role+".key")
}

func checkIdent(what, s string) error {
	if s == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("invalid character %q in %s", r, what)
		}
	}
	return nil
}

// CheckKeyName validates a key name: letters, digits, '-' and '_'.
func CheckKeyName(name string) error { return checkIdent("key name", name) }

// CheckRole validates a role name with the same rules as CheckKeyName.
func CheckRole(role string) error { return checkIdent("role", role) }

// ParseSeedHex parses a 32-byte seed written as 64 hex characters (optional 0x prefix).
func ParseSeedHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	seed, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("expected seed length of %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return seed, nil
}

func writeSeed(path string, seed []byte, overwrite bool) error {
	if len(seed) != ed25519.SeedSize {
		return fmt.Errorf("expected seed length of %d bytes", ed25519.SeedSize)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(hex.EncodeToString(seed) + "\n"); err != nil {
		return err
	}
	return f.Close()
}

func readSeed(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeedHex(string(b))
}

// InitRoot stores seed as the root key for name and returns its public key.
func (ks *KeyStore) InitRoot(name string, seed []byte, overwrite bool) (publicKey, path string, err error) {
	if err := CheckKeyName(name); err != nil {
		return "", "", err
	}
	path = ks.rootPath(name)
	if err := writeSeed(path, seed, overwrite); err != nil {
		return "", "", err
	}
	return PublicKeyFromSeed(seed), path, nil
}

// DeriveRole derives and stores a role key under the root key from.
func (ks *KeyStore) DeriveRole(from, role string, overwrite bool) (publicKey, path string, err error) {
	if err := CheckKeyName(from); err != nil {
		return "", "", err
	}
	root, err := readSeed(ks.rootPath(from))
	if err != nil {
		return "", "", err
	}
	seed, err := DeriveRoleSeed(root, role)
	if err != nil {
		return "", "", err
	}
	path = ks.rolePath(from, role)
	if err := writeSeed(path, seed, overwrite); err != nil {
		return "", "", err
	}
	return PublicKeyFromSeed(seed), path, nil
}

// Seed loads the seed for name, or for one of its roles when role is non-empty.
func (ks *KeyStore) Seed(name, role string) ([]byte, error) {
	if err := CheckKeyName(name); err != nil {
		return nil, err
	}
	if role == "" {
		return readSeed(ks.rootPath(name))
	}
	if err := CheckRole(role); err != nil {
		return nil, err
	}
	return readSeed(ks.rolePath(name, role))
}

// Signer loads the Ed25519 signer for name (and optional role).
func (ks *KeyStore) Signer(name, role string) (*Ed25519Signer, error) {
	seed, err := ks.Seed(name, role)
	if err != nil {
		return nil, err
	}
	return Ed25519SignerFromSeed(seed)
}

// Export returns the base64 public key for name (and optional role).
func (ks *KeyStore) Export(name, role string) (string, error) {
	seed, err := ks.Seed(name, role)
	if err != nil {
		return "", err
	}
	return PublicKeyFromSeed(seed), nil
}

// LoadSeed resolves a seed from, in order: an explicit hex seed, a key file,
// or a named key in the store.
func (ks *KeyStore) LoadSeed(seedHex, name, role, keyFile string) ([]byte, error) {
	switch {
	case seedHex != "":
		return ParseSeedHex(seedHex)
	case keyFile != "":
		return readSeed(keyFile)
	case name != "":
		return ks.Seed(name, role)
	}
	return nil, errors.New("no signer provided")
}

// List returns stored keys sorted by name, each with its sorted roles.
func (ks *KeyStore) List() ([]KeyEntry, error) {
	entries, err := os.ReadDir(ks.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []KeyEntry
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		entry := KeyEntry{Name: e.Name()}
		roles, rerr := os.ReadDir(filepath.Join(ks.Directory, e.Name(), "roles"))
		if rerr == nil {
			for _, r := range roles {
				if !r.IsDir() && strings.HasSuffix(r.Name(), ".key") {
					entry.Roles = append(entry.Roles, strings.TrimSuffix(r.Name(), ".key"))
				}
			}
			sort.Strings(entry.Roles)
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
