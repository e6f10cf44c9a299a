package cli

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appDirName = "batchgrab"

// Paths collects every filesystem location the application uses.
type Paths struct {
	DataDir      string
	SettingsFile string
	HistoryFile  string
	DownloadDir  string
	MP3Dir       string
	MP4Dir       string
}

// DefaultPaths resolves locations from the XDG base directories. Either
// argument may be empty to take the default.
func DefaultPaths(dataDir, downloadDir string) Paths {
	if dataDir == "" {
		dataDir = filepath.Join(xdg.DataHome, appDirName)
	}
	if downloadDir == "" {
		if xdg.UserDirs.Download != "" {
			downloadDir = filepath.Join(xdg.UserDirs.Download, appDirName)
		} else {
			downloadDir = filepath.Join(xdg.Home, "Downloads", appDirName)
		}
	}
	return Paths{
		DataDir:      dataDir,
		SettingsFile: filepath.Join(dataDir, "settings.json"),
		HistoryFile:  filepath.Join(dataDir, "history.json"),
		DownloadDir:  downloadDir,
		MP3Dir:       filepath.Join(downloadDir, "mp3"),
		MP4Dir:       filepath.Join(downloadDir, "mp4"),
	}
}

// Ensure creates every directory the application writes into.
func (p Paths) Ensure() error {
	for _, dir := range []string{p.DataDir, p.DownloadDir, p.MP3Dir, p.MP4Dir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
