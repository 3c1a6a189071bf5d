package model

import (
	"path/filepath"
	"strings"
)

// EncryptedSuffix is appended to archive names assembled from an
// encrypted-category repository.
const EncryptedSuffix = " - encrypted"

var nameSanitizer = strings.NewReplacer(
	":", "",
	"|", "",
	"/", "",
	"\\", "",
)

// SanitizeGameName strips characters that are unsafe in artifact file names.
func SanitizeGameName(name string) string {
	return strings.TrimSpace(nameSanitizer.Replace(name))
}

// OutputStem is the shared "<game> - <appid>" base of artifact names.
func OutputStem(gameName, appID string) string {
	return SanitizeGameName(gameName) + " - " + appID
}

// ProcessingDir returns the transient directory holding fetched files and
// the generated unlock script prior to packaging. Each repository attempt
// works in its own subdirectory (see RepoDirName) so a failed attempt's
// partial files never leak into a later repository's run.
func ProcessingDir(outputRoot, gameName, appID string) string {
	return filepath.Join(outputRoot, "_"+OutputStem(gameName, appID)+"_temp")
}

// RepoDirName maps a repository slug onto a directory name inside the
// processing dir.
func RepoDirName(repoName string) string {
	return strings.ReplaceAll(repoName, "/", "_")
}

// ArchivePath returns the final artifact path for a run.
func ArchivePath(outputRoot, gameName, appID string, encrypted bool) string {
	stem := OutputStem(gameName, appID)
	if encrypted {
		stem += EncryptedSuffix
	}
	return filepath.Join(outputRoot, stem+".zip")
}
