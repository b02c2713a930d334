package exfat

import (
	"path"
	"runtime"
)

var (
	AssetPath = ""
)

func init() {
	_, currentFilepath, _, _ := runtime.Caller(0)
	projectPath := path.Dir(currentFilepath)
	AssetPath = path.Join(projectPath, "test", "assets")
}
