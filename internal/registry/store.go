package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	currentAppVar = "ONESIGNAL_CURRENT_APP"
	appVarPrefix  = "ONESIGNAL_APP_"
)

var (
	appKeyVar = regexp.MustCompile(`^ONESIGNAL_APP_(\d+)_KEY$`)
	appVar    = regexp.MustCompile(`^ONESIGNAL_APP_\d+_(KEY|ID|API_KEY|ORG_API_KEY|NAME)$`)
)

// EnvFileStore persists a registry as a dotenv file.
//
// Each app n (starting at 1) is written as ONESIGNAL_APP_<n>_KEY, _ID,
// _API_KEY, _ORG_API_KEY and _NAME. The current app key is written as
// ONESIGNAL_CURRENT_APP. Other variables in the file are preserved, so the
// store can share a .env file with the rest of the configuration.
type EnvFileStore struct {
	Path string
}

// NewEnvFileStore returns a store for the given file path.
func NewEnvFileStore(path string) *EnvFileStore {
	return &EnvFileStore{Path: path}
}

// Load reads the snapshot from disk. A missing file yields an empty snapshot.
func (s *EnvFileStore) Load() (Snapshot, error) {
	values, err := godotenv.Read(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	return decodeSnapshot(values), nil
}

// Save writes the snapshot atomically with owner-only permissions. Registry
// variables from a previous save are replaced; everything else is kept.
func (s *EnvFileStore) Save(snap Snapshot) error {
	values, err := godotenv.Read(s.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", s.Path, err)
		}
		values = make(map[string]string)
	}
	for name := range values {
		if name == currentAppVar || appVar.MatchString(name) {
			delete(values, name)
		}
	}
	for name, value := range encodeSnapshot(snap) {
		values[name] = value
	}

	content, err := godotenv.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode app registry: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".apps-*.env")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if _, err := tmp.WriteString(content + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, s.Path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.Path, err)
	}
	return nil
}

func encodeSnapshot(snap Snapshot) map[string]string {
	values := make(map[string]string, len(snap.Apps)*5+1)
	for i, cfg := range snap.Apps {
		prefix := appVarPrefix + strconv.Itoa(i+1) + "_"
		values[prefix+"KEY"] = cfg.Key
		values[prefix+"ID"] = cfg.AppID
		values[prefix+"API_KEY"] = cfg.APIKey
		if cfg.OrgAPIKey != "" {
			values[prefix+"ORG_API_KEY"] = cfg.OrgAPIKey
		}
		if cfg.Name != "" {
			values[prefix+"NAME"] = cfg.Name
		}
	}
	if snap.Current != "" {
		values[currentAppVar] = snap.Current
	}
	return values
}

func decodeSnapshot(values map[string]string) Snapshot {
	var indices []int
	for name := range values {
		m := appKeyVar.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		indices = append(indices, n)
	}
	sort.Ints(indices)

	snap := Snapshot{Current: values[currentAppVar]}
	for _, n := range indices {
		prefix := appVarPrefix + strconv.Itoa(n) + "_"
		snap.Apps = append(snap.Apps, AppConfig{
			Key:       values[prefix+"KEY"],
			AppID:     values[prefix+"ID"],
			APIKey:    values[prefix+"API_KEY"],
			OrgAPIKey: values[prefix+"ORG_API_KEY"],
			Name:      values[prefix+"NAME"],
		})
	}
	return snap
}
