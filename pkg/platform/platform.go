package platform

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform is a target OS, architecture and C library.
type Platform struct {
	OS   string `yaml:"os" json:"os"`
	Arch string `yaml:"arch" json:"arch"`
	Libc string `yaml:"libc,omitempty" json:"libc,omitempty"`
}

// muslLoaderGlob matches the dynamic loader shipped by musl-based distributions.
var muslLoaderGlob = "/lib/ld-musl-*"

// CurrentPlatform returns the platform the process is running on.
func CurrentPlatform() Platform {
	p := Platform{
		OS:   NormalizeOS(runtime.GOOS),
		Arch: NormalizeArch(runtime.GOARCH),
	}
	if p.OS == OSLinux {
		p.Libc = detectLibc()
	}
	return p
}

func detectLibc() string {
	if matches, _ := filepath.Glob(muslLoaderGlob); len(matches) > 0 {
		return LibcMusl
	}
	return LibcGlibc
}

// String returns a string representation of the platform
func (p Platform) String() string {
	if p.Libc == LibcMusl {
		return fmt.Sprintf("%s/%s (musl)", p.OS, p.Arch)
	}
	return fmt.Sprintf("%s/%s", p.OS, p.Arch)
}

// IsMusl reports whether the platform is a musl-based Linux.
func (p Platform) IsMusl() bool {
	return p.OS == OSLinux && p.Libc == LibcMusl
}

// MinecraftOS is the OS name used by version JSON rules and natives maps.
func (p Platform) MinecraftOS() string {
	switch p.OS {
	case OSDarwin:
		return MinecraftOSMac
	case OSWindows:
		return MinecraftOSWindows
	case OSFreeBSD:
		return MinecraftOSFreeBSD
	default:
		return MinecraftOSLinux
	}
}

// MinecraftOSNames lists every spelling of the OS that may appear in classifiers.
func (p Platform) MinecraftOSNames() []string {
	if p.OS == OSDarwin {
		return []string{"macos", MinecraftOSMac}
	}
	return []string{p.MinecraftOS()}
}

// MinecraftArch is the architecture suffix used in natives keys.
func (p Platform) MinecraftArch() string {
	switch p.Arch {
	case ArchARM64:
		return MinecraftArchARM64
	case ArchARM:
		return MinecraftArchARM32
	case Arch386:
		return MinecraftArchX86
	default:
		return MinecraftArchX64
	}
}

// NeedsArchQualifier reports whether natives and rule names carry an arch suffix.
// Upstream metadata treats x86_64 as the unqualified default.
func (p Platform) NeedsArchQualifier() bool {
	return p.Arch != ArchAMD64
}

// RuleName is the key looked up in natives maps and compared to rule os names:
// "linux" on x86_64, "linux-arm64" elsewhere.
func (p Platform) RuleName() string {
	if p.NeedsArchQualifier() {
		return p.MinecraftOS() + "-" + p.MinecraftArch()
	}
	return p.MinecraftOS()
}

// ClasspathSeparator returns the separator used in java -cp arguments.
func (p Platform) ClasspathSeparator() string {
	if p.OS == OSWindows {
		return ";"
	}
	return ":"
}

// JavaRuntimeKey returns the platform key of the official runtime catalog.
// ok is false when the catalog has no builds for this platform.
func (p Platform) JavaRuntimeKey() (key string, ok bool) {
	if p.IsMusl() {
		return "", false
	}
	switch p.OS + "/" + p.Arch {
	case OSLinux + "/" + ArchAMD64:
		return "linux", true
	case OSLinux + "/" + Arch386:
		return "linux-i386", true
	case OSDarwin + "/" + ArchAMD64:
		return "mac-os", true
	case OSDarwin + "/" + ArchARM64:
		return "mac-os-arm64", true
	case OSWindows + "/" + ArchAMD64:
		return "windows-x64", true
	case OSWindows + "/" + Arch386:
		return "windows-x86", true
	case OSWindows + "/" + ArchARM64:
		return "windows-arm64", true
	}
	return "", false
}

// MatchesNativeClassifier reports whether a downloads.classifiers key such as
// "natives-windows-64" or "natives-macos-arm64" targets this platform.
func (p Platform) MatchesNativeClassifier(key string) bool {
	rest, ok := strings.CutPrefix(key, "natives-")
	if !ok {
		return false
	}
	for _, name := range p.MinecraftOSNames() {
		suffix, found := strings.CutPrefix(rest, name)
		if !found {
			continue
		}
		if suffix == "" {
			return p.Arch == ArchAMD64
		}
		if arch, ok := strings.CutPrefix(suffix, "-"); ok && classifierArch(arch) == p.Arch {
			return true
		}
	}
	return false
}

func classifierArch(suffix string) string {
	switch suffix {
	case "64", "x86_64", "x64":
		return ArchAMD64
	case "32", "x86":
		return Arch386
	case "arm64", "aarch64", "aarch_64":
		return ArchARM64
	case "arm32":
		return ArchARM
	}
	return ""
}

// NativeNameCompatible reports whether a library coordinate that embeds an
// architecture marker (for example "...:natives-linux-arm64") suits this platform.
func (p Platform) NativeNameCompatible(name string) bool {
	hasARM := strings.Contains(name, "aarch") || strings.Contains(name, "arm")
	has32 := strings.Contains(name, "x86") && !strings.Contains(name, "x86_64")
	switch p.Arch {
	case ArchARM64:
		return strings.Contains(name, "aarch") || strings.Contains(name, "arm64")
	case ArchARM:
		return strings.Contains(name, "arm32")
	case Arch386:
		return has32
	default:
		return !hasARM && !has32
	}
}

// NormalizeOS maps common OS spellings onto Go's GOOS names.
func NormalizeOS(os string) string {
	switch os = strings.ToLower(os); os {
	case "macos", "osx", "mac-os", "darwin":
		return OSDarwin
	case "win", "windows":
		return OSWindows
	default:
		return os
	}
}

// NormalizeArch normalizes architecture names to a common format
func NormalizeArch(arch string) string {
	switch arch = strings.ToLower(arch); arch {
	case "x86_64", "x64", "amd64":
		return ArchAMD64
	case "x86", "i386", "i686", "386":
		return Arch386
	case "arm64", "aarch64":
		return ArchARM64
	case "arm", "arm32", "armv7":
		return ArchARM
	default:
		return arch
	}
}
