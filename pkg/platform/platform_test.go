package platform

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	linuxX64   = Platform{OS: OSLinux, Arch: ArchAMD64, Libc: LibcGlibc}
	linuxARM64 = Platform{OS: OSLinux, Arch: ArchARM64, Libc: LibcGlibc}
	linuxARM32 = Platform{OS: OSLinux, Arch: ArchARM, Libc: LibcGlibc}
	alpineX64  = Platform{OS: OSLinux, Arch: ArchAMD64, Libc: LibcMusl}
	macARM64   = Platform{OS: OSDarwin, Arch: ArchARM64}
	macX64     = Platform{OS: OSDarwin, Arch: ArchAMD64}
	windowsX64 = Platform{OS: OSWindows, Arch: ArchAMD64}
	windowsX86 = Platform{OS: OSWindows, Arch: Arch386}
	windowsARM = Platform{OS: OSWindows, Arch: ArchARM64}
	freebsdX64 = Platform{OS: OSFreeBSD, Arch: ArchAMD64}
)

func TestCurrentPlatform(t *testing.T) {
	p := CurrentPlatform()
	assert.Equal(t, NormalizeOS(runtime.GOOS), p.OS)
	assert.Equal(t, NormalizeArch(runtime.GOARCH), p.Arch)
	if p.OS == OSLinux {
		assert.Contains(t, []string{LibcGlibc, LibcMusl}, p.Libc)
	} else {
		assert.Empty(t, p.Libc)
	}
}

func TestRuleName(t *testing.T) {
	tests := []struct {
		p    Platform
		want string
	}{
		{linuxX64, "linux"},
		{linuxARM64, "linux-arm64"},
		{linuxARM32, "linux-arm32"},
		{macX64, "osx"},
		{macARM64, "osx-arm64"},
		{windowsX86, "windows-x86"},
		{freebsdX64, "freebsd"},
	}
	for _, tt := range tests {
		t.Run(tt.p.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.RuleName())
		})
	}
}

func TestJavaRuntimeKey(t *testing.T) {
	tests := []struct {
		p      Platform
		want   string
		wantOK bool
	}{
		{linuxX64, "linux", true},
		{Platform{OS: OSLinux, Arch: Arch386, Libc: LibcGlibc}, "linux-i386", true},
		{macX64, "mac-os", true},
		{macARM64, "mac-os-arm64", true},
		{windowsX64, "windows-x64", true},
		{windowsX86, "windows-x86", true},
		{windowsARM, "windows-arm64", true},
		{alpineX64, "", false},
		{linuxARM64, "", false},
		{freebsdX64, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.p.String(), func(t *testing.T) {
			key, ok := tt.p.JavaRuntimeKey()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestMatchesNativeClassifier(t *testing.T) {
	tests := []struct {
		name string
		p    Platform
		key  string
		want bool
	}{
		{"plain linux", linuxX64, "natives-linux", true},
		{"linux arm on x64", linuxX64, "natives-linux-arm64", false},
		{"linux arm64", linuxARM64, "natives-linux-arm64", true},
		{"linux arm64 aarch spelling", linuxARM64, "natives-linux-aarch_64", true},
		{"plain linux on arm64", linuxARM64, "natives-linux", false},
		{"linux arm32", linuxARM32, "natives-linux-arm32", true},
		{"windows 64", windowsX64, "natives-windows-64", true},
		{"windows plain", windowsX64, "natives-windows", true},
		{"windows 32 on 64", windowsX64, "natives-windows-32", false},
		{"windows 32", windowsX86, "natives-windows-32", true},
		{"windows x86", windowsX86, "natives-windows-x86", true},
		{"macos spelling", macX64, "natives-macos", true},
		{"osx spelling", macX64, "natives-osx", true},
		{"mac arm", macARM64, "natives-macos-arm64", true},
		{"other os", linuxX64, "natives-windows", false},
		{"not natives", linuxX64, "javadoc", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.MatchesNativeClassifier(tt.key))
		})
	}
}

func TestNativeNameCompatible(t *testing.T) {
	assert.True(t, linuxX64.NativeNameCompatible("org.lwjgl:lwjgl:3.3.1:natives-linux"))
	assert.False(t, linuxX64.NativeNameCompatible("org.lwjgl:lwjgl:3.3.1:natives-linux-arm64"))
	assert.True(t, linuxX64.NativeNameCompatible("org.lwjgl:lwjgl:3.3.1:natives-windows-x86_64"))
	assert.True(t, linuxARM64.NativeNameCompatible("org.lwjgl:lwjgl:3.3.1:natives-linux-arm64"))
	assert.True(t, linuxARM64.NativeNameCompatible("org.lwjgl:lwjgl:3.3.1:natives-windows-aarch64"))
	assert.False(t, linuxARM64.NativeNameCompatible("org.lwjgl:lwjgl:3.3.1:natives-linux"))
	assert.True(t, windowsX86.NativeNameCompatible("org.lwjgl:lwjgl:3.3.1:natives-windows-x86"))
	assert.False(t, windowsX86.NativeNameCompatible("org.lwjgl:lwjgl:3.3.1:natives-windows-x86_64"))
}

func TestClasspathSeparator(t *testing.T) {
	assert.Equal(t, ";", windowsX64.ClasspathSeparator())
	assert.Equal(t, ":", linuxX64.ClasspathSeparator())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, OSDarwin, NormalizeOS("macOS"))
	assert.Equal(t, OSWindows, NormalizeOS("win"))
	assert.Equal(t, "plan9", NormalizeOS("plan9"))
	assert.Equal(t, ArchAMD64, NormalizeArch("x86_64"))
	assert.Equal(t, Arch386, NormalizeArch("i686"))
	assert.Equal(t, ArchARM64, NormalizeArch("aarch64"))
	assert.Equal(t, ArchARM, NormalizeArch("armv7"))
}

func TestMinecraftNames(t *testing.T) {
	assert.Equal(t, []string{"macos", "osx"}, macARM64.MinecraftOSNames())
	assert.Equal(t, []string{"windows"}, windowsX64.MinecraftOSNames())
	assert.True(t, alpineX64.IsMusl())
	assert.False(t, linuxX64.IsMusl())
	assert.Equal(t, "linux/amd64 (musl)", alpineX64.String())
}
