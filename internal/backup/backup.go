// Package backup discovers device backups on the host and parses their
// top-level descriptor files.
package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"howett.net/plist"
)

// Backup describes one device backup directory.
type Backup struct {
	Path            string
	DeviceName      string
	ProductType     string
	ProductVersion  string
	SerialNumber    string
	LastBackupDate  time.Time
	Encrypted       bool
	ManifestVersion string
	SnapshotState   string
}

// minManifestMajor is the oldest supported catalog format. Older backups
// store blobs flat instead of sharded and use a different index format.
const minManifestMajor = 10

type infoPlist struct {
	DeviceName     string    `plist:"Device Name"`
	ProductType    string    `plist:"Product Type"`
	ProductVersion string    `plist:"Product Version"`
	SerialNumber   string    `plist:"Serial Number"`
	LastBackupDate time.Time `plist:"Last Backup Date"`
}

type manifestPlist struct {
	IsEncrypted bool   `plist:"IsEncrypted"`
	Version     string `plist:"Version"`
}

type statusPlist struct {
	SnapshotState string `plist:"SnapshotState"`
}

// DefaultSearchRoot returns the platform's standard backup location.
func DefaultSearchRoot() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", "MobileSync", "Backup"), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", errors.New("APPDATA is not set")
		}
		return filepath.Join(appData, "Apple Computer", "MobileSync", "Backup"), nil
	default:
		return "", errors.New("no default backup location on this platform; pass --backup")
	}
}

// Discover lists the backups under a search root. Directories that do not
// carry a readable descriptor set are skipped, not fatal.
func Discover(root string) ([]Backup, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading backup root %s: %w", root, err)
	}

	var backups []Backup
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		b, err := Load(filepath.Join(root, entry.Name()))
		if err != nil {
			continue
		}
		backups = append(backups, b)
	}
	return backups, nil
}

// Load parses the descriptor files of a single backup directory.
func Load(dir string) (Backup, error) {
	b := Backup{Path: dir}

	var info infoPlist
	if err := decodeFile(filepath.Join(dir, "Info.plist"), &info); err != nil {
		return Backup{}, fmt.Errorf("reading backup descriptor: %w", err)
	}
	b.DeviceName = info.DeviceName
	b.ProductType = info.ProductType
	b.ProductVersion = info.ProductVersion
	b.SerialNumber = info.SerialNumber
	b.LastBackupDate = info.LastBackupDate

	var manifest manifestPlist
	if err := decodeFile(filepath.Join(dir, "Manifest.plist"), &manifest); err != nil {
		return Backup{}, fmt.Errorf("reading backup manifest: %w", err)
	}
	b.Encrypted = manifest.IsEncrypted
	b.ManifestVersion = manifest.Version

	// Status.plist is informational only; ignore a missing one.
	var status statusPlist
	if err := decodeFile(filepath.Join(dir, "Status.plist"), &status); err == nil {
		b.SnapshotState = status.SnapshotState
	}

	return b, nil
}

// Validate gates extraction: encrypted backups and pre-sharded-layout
// formats are refused before any component touches the catalog.
func (b Backup) Validate() error {
	if b.Encrypted {
		return errors.New("backup is encrypted; encrypted backups are not supported")
	}
	major, err := manifestMajor(b.ManifestVersion)
	if err != nil || major < minManifestMajor {
		return fmt.Errorf("unsupported backup format version %q (need %d.0 or newer)", b.ManifestVersion, minManifestMajor)
	}
	return nil
}

func manifestMajor(version string) (int, error) {
	head, _, _ := strings.Cut(version, ".")
	return strconv.Atoi(head)
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if _, err := plist.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return nil
}
