package forge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/model"
)

func TestNewVersions(t *testing.T) {
	tests := []struct {
		game, forge    string
		wantForge      string
		wantShort      string
		wantNormalized string
		wantMajor      int
	}{
		{"1.20.1", "47.2.0", "47.2.0", "1.20.1-47.2.0", "1.20.1-47.2.0", 47},
		{"1.20", "46.0.14", "46.0.14", "1.20-46.0.14", "1.20.0-46.0.14", 46},
		{"1.12.2", "1.12.2-14.23.5.2859", "14.23.5.2859", "1.12.2-14.23.5.2859", "1.12.2-14.23.5.2859", 14},
	}
	for _, tt := range tests {
		t.Run(tt.game+"/"+tt.forge, func(t *testing.T) {
			v, err := NewVersions(tt.game, tt.forge)
			require.NoError(t, err)
			assert.Equal(t, tt.wantForge, v.Forge)
			assert.Equal(t, tt.wantShort, v.Short)
			assert.Equal(t, tt.wantNormalized, v.Normalized)
			assert.Equal(t, tt.wantMajor, v.Major)
		})
	}

	_, err := NewVersions("1.20.1", "latest")
	assert.ErrorIs(t, err, errutils.ErrParse)
}

func TestInstallerCandidates(t *testing.T) {
	v, err := NewVersions("1.20", "46.0.14")
	require.NoError(t, err)

	var urls []string
	for _, c := range v.InstallerCandidates("https://maven.example/forge/") {
		urls = append(urls, c.URL)
	}
	assert.Equal(t, []string{
		"https://maven.example/forge/1.20-46.0.14/forge-1.20-46.0.14-installer.jar",
		"https://maven.example/forge/1.20.0-46.0.14/forge-1.20.0-46.0.14-installer.jar",
		"https://maven.example/forge/1.20-46.0.14/forge-1.20-46.0.14-universal.jar",
		"https://maven.example/forge/1.20.0-46.0.14/forge-1.20.0-46.0.14-universal.jar",
		"https://maven.example/forge/1.20-46.0.14/forge-1.20-46.0.14-client.zip",
		"https://maven.example/forge/1.20-46.0.14/forge-1.20-46.0.14-universal.zip",
	}, urls)

	old, err := NewVersions("1.7.10", "10.13.4.1614")
	require.NoError(t, err)
	candidates := old.InstallerCandidates("https://maven.example/forge")
	assert.Equal(t, "forge-1.7.10-10.13.4.1614-universal.jar", candidates[0].Name)
	assert.Equal(t, "forge-1.7.10-10.13.4.1614-installer.jar", candidates[1].Name)
	assert.Len(t, candidates, 4)
}

func TestClasspathHead(t *testing.T) {
	old, _ := NewVersions("1.7.10", "10.13.4.1614")
	mid, _ := NewVersions("1.16.5", "36.2.39")
	modern, _ := NewVersions("1.20.1", "47.2.0")

	assert.Equal(t, []string{"forge-universal.jar"}, old.classpathHead("forge-universal.jar"))
	assert.Equal(t, []string{"libraries/net/minecraftforge/forge/1.16.5-36.2.39/forge-1.16.5-36.2.39.jar"}, mid.classpathHead("x.jar"))
	assert.Empty(t, modern.classpathHead("x.jar"))
}

func TestNeoForgePrefix(t *testing.T) {
	assert.Equal(t, "20.4.", NeoForgePrefix("1.20.4"))
	assert.Equal(t, "21.0.", NeoForgePrefix("1.21"))
	assert.Equal(t, "0.24w14a.", NeoForgePrefix("24w14a"))
}

func TestPickNeoForge(t *testing.T) {
	versions := []string{"20.2.86", "20.4.80-beta", "20.4.237", "20.6.1", "0.24w14a.1"}

	v, ok := PickNeoForge(versions, "1.20.4")
	require.True(t, ok)
	assert.Equal(t, "20.4.237", v)

	v, ok = PickNeoForge(versions, "24w14a")
	require.True(t, ok)
	assert.Equal(t, "0.24w14a.1", v)

	_, ok = PickNeoForge(versions, "1.21")
	assert.False(t, ok)
}

func TestSelectLibraries(t *testing.T) {
	no := false
	libs := []model.Library{
		{Name: "net.minecraftforge:forge:1.16.5-36.2.39"},
		{Name: "org.scala-lang:scala-library:2.11.1", ClientReq: &no},
		{Name: "com.typesafe:config:1.2.1", URL: "https://maven.example/"},
		{Name: "org.ow2.asm:asm:9.5"},
		{Name: "broken"},
		{Name: "cpw.mods:modlauncher:10.0.9", Downloads: &model.LibraryDownloads{Artifact: &model.Artifact{
			Path: "cpw/mods/modlauncher/10.0.9/modlauncher-10.0.9.jar",
			URL:  "https://maven.example/cpw/mods/modlauncher/10.0.9/modlauncher-10.0.9.jar",
			SHA1: "0123456789abcdef0123456789abcdef01234567",
		}}},
	}

	got := selectLibraries(libs, true, false)
	require.Len(t, got, 3)
	assert.Equal(t, "https://maven.example/com/typesafe/config/1.2.1/config-1.2.1.jar", got[0].URL)
	assert.Equal(t, "com.typesafe:config", got[0].GroupArtifact)
	assert.Equal(t, "https://libraries.minecraft.net/org/ow2/asm/asm/9.5/asm-9.5.jar", got[1].URL)
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", got[2].SHA1)

	server := selectLibraries(libs, false, true)
	assert.Len(t, server, 5)
}
