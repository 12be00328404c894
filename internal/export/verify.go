package export

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/goliatone/go-blog/internal/generator"
)

// VerificationError reports how the output directory diverged from the
// manifest the last build wrote.
type VerificationError struct {
	Missing   []string
	Changed   []string
	Untracked []string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("export: output directory does not match its manifest (%d missing, %d changed, %d untracked)",
		len(e.Missing), len(e.Changed), len(e.Untracked))
}

func (e *VerificationError) Unwrap() error {
	return ErrDirtyOutput
}

// verifyAgainstManifest compares the files on disk with the manifest's
// tracked artifacts. The manifest file itself is exempt; a stale archive
// or stray upload inside the output directory counts as untracked.
func verifyAgainstManifest(dir string, manifest *generator.Manifest, files []string) *VerificationError {
	tracked := map[string]string{}
	for _, artifact := range manifest.Artifacts() {
		if artifact.Output == "" {
			continue
		}
		tracked[artifact.Output] = artifact.Checksum
	}

	verr := &VerificationError{}
	onDisk := make(map[string]struct{}, len(files))
	for _, rel := range files {
		onDisk[rel] = struct{}{}
		if rel == generator.ManifestFileName {
			continue
		}
		checksum, ok := tracked[rel]
		if !ok {
			verr.Untracked = append(verr.Untracked, rel)
			continue
		}
		if checksum == "" {
			continue
		}
		sum, err := hashFile(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil || sum != checksum {
			verr.Changed = append(verr.Changed, rel)
		}
	}
	for rel := range tracked {
		if _, ok := onDisk[rel]; !ok {
			verr.Missing = append(verr.Missing, rel)
		}
	}

	if len(verr.Missing) == 0 && len(verr.Changed) == 0 && len(verr.Untracked) == 0 {
		return nil
	}
	sort.Strings(verr.Missing)
	sort.Strings(verr.Changed)
	sort.Strings(verr.Untracked)
	return verr
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
