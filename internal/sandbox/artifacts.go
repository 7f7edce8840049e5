package sandbox

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ArtifactInfo describes a file produced under the output directory.
type ArtifactInfo struct {
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	Type     string    `json:"type"`
}

var artifactTypes = map[string]string{
	".csv":  "data",
	".json": "data",
	".png":  "image",
	".jpg":  "image",
	".jpeg": "image",
	".pdf":  "document",
	".txt":  "text",
	".html": "markup",
}

func artifactType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := artifactTypes[ext]; ok {
		return t
	}
	return "unknown"
}

// collectArtifacts walks the output directory recursively and returns an
// entry per regular file. A missing directory yields no artifacts.
func collectArtifacts(outputDir string) []ArtifactInfo {
	var artifacts []ArtifactInfo
	_ = filepath.WalkDir(outputDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		artifacts = append(artifacts, ArtifactInfo{
			Path:     path,
			Name:     d.Name(),
			Size:     info.Size(),
			Modified: info.ModTime(),
			Type:     artifactType(d.Name()),
		})
		return nil
	})
	return artifacts
}
