package java

import "github.com/glorpus-work/lodestone/pkg/platform"

// AlternateKey selects a third-party build.
type AlternateKey struct {
	Version Version
	OS      string
	Arch    string
	Libc    string
}

// AlternateTable maps platforms the official catalog does not cover to archive URLs.
type AlternateTable map[AlternateKey]string

const (
	correttoBase = "https://corretto.aws/downloads/latest/amazon-corretto-"
	getJDKBase   = "https://github.com/Mrmayman/get-jdk/releases/download/java8-1/"
)

// DefaultAlternates is the built-in fallback table: Amazon Corretto for mainstream
// platforms and repackaged Java 8 builds for the rest.
var DefaultAlternates = buildDefaultAlternates()

func buildDefaultAlternates() AlternateTable {
	t := AlternateTable{}
	corretto := func(os, arch, libc, correttoArch, flavor, ext string) {
		for _, v := range []Version{Java8, Java17, Java21, Java25} {
			t[AlternateKey{v, os, arch, libc}] = correttoBase + v.major() + "-" + correttoArch + "-" + flavor + "-jdk" + ext
		}
		t[AlternateKey{Java16, os, arch, libc}] = t[AlternateKey{Java17, os, arch, libc}]
	}

	corretto(platform.OSLinux, platform.ArchAMD64, platform.LibcGlibc, "x64", "linux", ".tar.gz")
	corretto(platform.OSLinux, platform.ArchARM64, platform.LibcGlibc, "aarch64", "linux", ".tar.gz")
	corretto(platform.OSLinux, platform.ArchAMD64, platform.LibcMusl, "x64", "alpine", ".tar.gz")
	corretto(platform.OSLinux, platform.ArchARM64, platform.LibcMusl, "aarch64", "alpine", ".tar.gz")
	corretto(platform.OSDarwin, platform.ArchAMD64, "", "x64", "macos", ".tar.gz")
	corretto(platform.OSDarwin, platform.ArchARM64, "", "aarch64", "macos", ".tar.gz")
	corretto(platform.OSWindows, platform.ArchAMD64, "", "x64", "windows", ".zip")
	corretto(platform.OSWindows, platform.Arch386, "", "x86", "windows", ".zip")

	t[AlternateKey{Java8, platform.OSLinux, platform.ArchARM, platform.LibcGlibc}] = getJDKBase + "jdk-8u231-linux-arm32-vfp-hflt.tar.gz"
	t[AlternateKey{Java8, platform.OSLinux, platform.Arch386, platform.LibcGlibc}] = "https://github.com/hmsjy2017/get-jdk/releases/download/v8u231/jdk-8u231-linux-i586.tar.gz"
	t[AlternateKey{Java8, platform.OSFreeBSD, platform.ArchAMD64, ""}] = getJDKBase + "jdk-8u452-freebsd-x64.tar.gz"
	t[AlternateKey{Java8, platform.OSSolaris, platform.ArchAMD64, ""}] = getJDKBase + "jdk-8u231-solaris-x64.tar.gz"
	t[AlternateKey{Java8, platform.OSSolaris, platform.ArchSPARCV9, ""}] = getJDKBase + "jdk-8u231-solaris-sparcv9.tar.gz"
	return t
}

func (v Version) major() string {
	return v.String()[len("java_"):]
}

// Lookup finds the archive URL for v on p.
func (t AlternateTable) Lookup(p platform.Platform, v Version) (string, bool) {
	libc := ""
	if p.OS == platform.OSLinux {
		libc = p.Libc
		if libc == "" {
			libc = platform.LibcGlibc
		}
	}
	url, ok := t[AlternateKey{Version: v, OS: p.OS, Arch: p.Arch, Libc: libc}]
	return url, ok
}
