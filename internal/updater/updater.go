// Package updater checks GitHub for new corkboard releases and can
// replace the running binary in place. It talks to the public Releases
// API, so no credentials are involved.
//
// The serve-time check is best effort: CheckVersion never returns an
// error, and callers print any notice to stderr because stdout may be
// carrying the stdio transport.
package updater

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	// githubRepo is the repository path for API calls.
	githubRepo = "corkboardhq/corkboard"

	// binaryName is what the release archives call the executable.
	binaryName = "corkboard"

	// releaseURL is the GitHub API endpoint for the latest release.
	releaseURL = "https://api.github.com/repos/" + githubRepo + "/releases/latest"

	// checkTimeout is how long we wait for the GitHub API.
	checkTimeout = 10 * time.Second
)

// Test seams: the release endpoint and HTTP client can be swapped out.
var (
	releaseEndpoint = releaseURL
	httpClient      = &http.Client{Timeout: checkTimeout}
)

// Release holds the relevant fields from a GitHub release.
type Release struct {
	TagName string  `json:"tag_name"`
	HTMLURL string  `json:"html_url"`
	Assets  []Asset `json:"assets"`
}

// Asset represents a downloadable file in a GitHub release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// UpdateResult is returned by CheckVersion to communicate the outcome.
type UpdateResult struct {
	CurrentVersion  string // running version, e.g. "0.2.0"
	LatestVersion   string // newest release, e.g. "0.3.0"
	UpdateAvailable bool   // latest > current
	ReleaseURL      string // GitHub page for the release
}

// fetchLatest asks the GitHub API for the newest release.
func fetchLatest(currentVersion string) (*Release, error) {
	req, err := http.NewRequest(http.MethodGet, releaseEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", binaryName+"/"+currentVersion)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checking latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("parsing release info: %w", err)
	}
	return &release, nil
}

// CheckVersion queries GitHub for the latest release and compares it
// against the running version. Network failures are swallowed; the
// result then simply reports no update.
func CheckVersion(currentVersion string) *UpdateResult {
	result := &UpdateResult{
		CurrentVersion: normalizeVersion(currentVersion),
	}

	release, err := fetchLatest(currentVersion)
	if err != nil {
		return result
	}

	result.LatestVersion = normalizeVersion(release.TagName)
	result.ReleaseURL = release.HTMLURL
	result.UpdateAvailable = isNewer(result.CurrentVersion, result.LatestVersion)
	return result
}

// SelfUpdate downloads the release archive for the current OS and
// architecture and replaces the running executable atomically: the new
// binary lands next to the old one, then a rename swaps them.
func SelfUpdate(currentVersion string) error {
	release, err := fetchLatest(currentVersion)
	if err != nil {
		return err
	}

	latestVersion := normalizeVersion(release.TagName)
	if !isNewer(normalizeVersion(currentVersion), latestVersion) {
		return fmt.Errorf("already at latest version (%s)", currentVersion)
	}

	assetName := buildAssetName(latestVersion)
	var downloadURL string
	for _, asset := range release.Assets {
		if asset.Name == assetName {
			downloadURL = asset.BrowserDownloadURL
			break
		}
	}
	if downloadURL == "" {
		return fmt.Errorf("no release asset for %s/%s (looked for %s)", runtime.GOOS, runtime.GOARCH, assetName)
	}

	resp, err := http.Get(downloadURL) //nolint:gosec // URL comes from the GitHub API
	if err != nil {
		return fmt.Errorf("downloading release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned %d", resp.StatusCode)
	}

	binaryData, err := extractBinary(resp.Body, assetName)
	if err != nil {
		return fmt.Errorf("extracting binary: %w", err)
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("finding current executable: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("resolving symlinks: %w", err)
	}

	tmpPath := execPath + ".new"
	if err := os.WriteFile(tmpPath, binaryData, 0o755); err != nil {
		return fmt.Errorf("writing new binary: %w", err)
	}

	// Windows can't replace a running binary directly, so park the old
	// one under .old first.
	if runtime.GOOS == "windows" {
		oldPath := execPath + ".old"
		_ = os.Remove(oldPath)
		if err := os.Rename(execPath, oldPath); err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("backing up current binary: %w", err)
		}
	}

	if err := os.Rename(tmpPath, execPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing binary: %w", err)
	}

	return nil
}

// extractBinary pulls the corkboard executable out of a release archive.
func extractBinary(reader io.Reader, assetName string) ([]byte, error) {
	if strings.HasSuffix(assetName, ".zip") {
		return extractFromZip(reader)
	}
	return extractFromTarGz(reader)
}

func extractFromTarGz(reader io.Reader) ([]byte, error) {
	gz, err := gzip.NewReader(reader)
	if err != nil {
		return nil, fmt.Errorf("opening gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar: %w", err)
		}

		name := filepath.Base(header.Name)
		if name == binaryName || name == binaryName+".exe" {
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("reading binary from tar: %w", err)
			}
			return data, nil
		}
	}

	return nil, fmt.Errorf("%s binary not found in archive", binaryName)
}

// extractFromZip is not implemented: zip needs random access, which a
// streaming download doesn't give us. Windows users download manually.
func extractFromZip(io.Reader) ([]byte, error) {
	return nil, fmt.Errorf("automatic zip extraction is not supported on Windows, download manually from GitHub releases")
}

// buildAssetName constructs the expected archive filename for the
// current OS and architecture, matching GoReleaser's name_template.
func buildAssetName(version string) string {
	ext := "tar.gz"
	if runtime.GOOS == "windows" {
		ext = "zip"
	}
	return fmt.Sprintf("%s_%s_%s_%s.%s", binaryName, version, runtime.GOOS, runtime.GOARCH, ext)
}

// normalizeVersion strips the leading "v" from version strings.
func normalizeVersion(v string) string {
	return strings.TrimPrefix(v, "v")
}

// isNewer reports whether latest is a higher semver than current.
// Development builds never update.
func isNewer(current, latest string) bool {
	if current == "" || latest == "" || current == "dev" {
		return false
	}

	currentParts := strings.Split(current, ".")
	latestParts := strings.Split(latest, ".")
	for len(currentParts) < 3 {
		currentParts = append(currentParts, "0")
	}
	for len(latestParts) < 3 {
		latestParts = append(latestParts, "0")
	}

	for i := 0; i < 3; i++ {
		c := parseIntSafe(currentParts[i])
		l := parseIntSafe(latestParts[i])
		if l > c {
			return true
		}
		if l < c {
			return false
		}
	}
	return false
}

// parseIntSafe reads the leading digits of s, so "3rc1" parses as 3.
func parseIntSafe(s string) int {
	n := 0
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			break
		}
		n = n*10 + int(ch-'0')
	}
	return n
}
