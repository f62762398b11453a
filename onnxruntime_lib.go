//go:build onnx

package sod

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// BundledLibDir is the directory name under which platform-specific ONNX Runtime
// libraries are stored (e.g. lib/linux_arm64/libonnxruntime.so).
const BundledLibDir = "lib"

// DataDir is the directory where the Silero model and optionally the runtime
// are stored. Runtime files there are named e.g. onnxruntime_arm64.so.
const DataDir = "data"

// RuntimeLibEnv names the environment variable consulted for the runtime path.
const RuntimeLibEnv = "ONNXRUNTIME_LIB"

var (
	runtimeMu    sync.Mutex
	runtimeReady bool
)

// InitONNXRuntime initializes the ONNX Runtime environment once per process.
// libPath may be empty: the RuntimeLibEnv variable, then the bundled data/ and
// lib/<platform>/ directories under the working and executable directories are
// tried, and finally the loader's default search path.
func InitONNXRuntime(libPath string) error {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	if runtimeReady {
		return nil
	}
	if libPath == "" {
		libPath = os.Getenv(RuntimeLibEnv)
	}
	if libPath == "" {
		libPath = resolveBundledLib(candidateBaseDirs())
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnx runtime (lib %q): %w", libPath, err)
	}
	runtimeReady = true
	return nil
}

// DestroyONNXRuntime tears down the environment set up by InitONNXRuntime.
func DestroyONNXRuntime() error {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	if !runtimeReady {
		return nil
	}
	runtimeReady = false
	return ort.DestroyEnvironment()
}

func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// bundledLibNames returns candidate filenames for the ONNX Runtime shared library
// on the current OS. On Linux, official releases use versioned .so names; the
// first existing file wins.
func bundledLibNames() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"libonnxruntime.dylib"}
	case "windows":
		return []string{"onnxruntime.dll"}
	default:
		return []string{"libonnxruntime.so.1.23.2", "libonnxruntime.so"}
	}
}

func dataDirLibName() string {
	switch runtime.GOOS {
	case "darwin":
		return "onnxruntime_" + runtime.GOARCH + ".dylib"
	case "windows":
		return "onnxruntime.dll"
	default:
		return "onnxruntime_" + runtime.GOARCH + ".so"
	}
}

// candidateBaseDirs returns the working directory, then the executable's.
func candidateBaseDirs() []string {
	cwd, _ := os.Getwd()
	exe, err := os.Executable()
	if err != nil {
		return []string{cwd}
	}
	exeDir := filepath.Dir(exe)
	if exeDir == cwd {
		return []string{cwd}
	}
	return []string{cwd, exeDir}
}

// resolveBundledLib returns the first existing path among data/<name> and
// lib/<GOOS_GOARCH>/<name> under each base directory, or "".
func resolveBundledLib(baseDirs []string) string {
	platform := runtime.GOOS + "_" + runtime.GOARCH
	dataName := dataDirLibName()
	for _, base := range baseDirs {
		if base == "" {
			continue
		}
		if p := filepath.Join(base, DataDir, dataName); pathExists(p) {
			return p
		}
	}
	for _, base := range baseDirs {
		if base == "" {
			continue
		}
		for _, name := range bundledLibNames() {
			if p := filepath.Join(base, BundledLibDir, platform, name); pathExists(p) {
				return p
			}
		}
	}
	return ""
}
