// Package platform describes the host the launcher runs on and translates it into
// the names Minecraft metadata uses for operating systems, architectures and
// runtime catalogs.
package platform

const (
	// OSWindows represents the Windows operating system.
	OSWindows = "windows"
	// OSLinux represents the Linux operating system.
	OSLinux = "linux"
	// OSDarwin represents the macOS operating system.
	OSDarwin = "darwin"
	// OSFreeBSD represents the FreeBSD operating system.
	OSFreeBSD = "freebsd"
	// OSSolaris represents Solaris; only reachable through the alternate Java table.
	OSSolaris = "solaris"

	// ArchAMD64 represents the AMD64 (x86_64) architecture.
	ArchAMD64 = "amd64"
	// Arch386 represents the 32-bit x86 architecture.
	Arch386 = "386"
	// ArchARM represents the ARM architecture (32-bit).
	ArchARM = "arm"
	// ArchARM64 represents the ARM64 (AArch64) architecture.
	ArchARM64 = "arm64"
	// ArchSPARCV9 represents 64-bit SPARC.
	ArchSPARCV9 = "sparcv9"

	LibcGlibc = "glibc"
	LibcMusl  = "musl"
)

// Names used inside version JSON rules, natives maps and classifiers.
const (
	MinecraftOSWindows = "windows"
	MinecraftOSLinux   = "linux"
	MinecraftOSMac     = "osx"
	MinecraftOSFreeBSD = "freebsd"

	MinecraftArchX64   = "x86_64"
	MinecraftArchX86   = "x86"
	MinecraftArchARM64 = "arm64"
	MinecraftArchARM32 = "arm32"
)
