package forge

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/glorpus-work/lodestone/pkg/archive"
	"github.com/glorpus-work/lodestone/pkg/download"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/http"
	"github.com/glorpus-work/lodestone/pkg/java"
	mock_java "github.com/glorpus-work/lodestone/pkg/java/mocks"
	"github.com/glorpus-work/lodestone/pkg/loader"
	"github.com/glorpus-work/lodestone/pkg/model"
	"github.com/glorpus-work/lodestone/pkg/platform"
)

var linuxX64 = platform.Platform{OS: "linux", Arch: "amd64", Libc: "glibc"}

var (
	mc1710 = &model.VersionDetails{ID: "1.7.10", ReleaseTime: "2014-05-14T17:29:23+00:00"}
	mc147  = &model.VersionDetails{ID: "1.4.7", ReleaseTime: "2012-12-28T00:00:00+00:00"}
	mc1201 = &model.VersionDetails{ID: "1.20.1", ReleaseTime: "2023-06-12T13:25:51+00:00"}
	mc1204 = &model.VersionDetails{ID: "1.20.4", ReleaseTime: "2023-12-07T12:56:20+00:00"}
)

type fileServer struct {
	*httptest.Server
	mu    sync.Mutex
	files map[string][]byte
}

func newFileServer(t *testing.T) *fileServer {
	t.Helper()
	fsrv := &fileServer{files: map[string][]byte{}}
	fsrv.Server = httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		fsrv.mu.Lock()
		body, ok := fsrv.files[r.URL.Path]
		fsrv.mu.Unlock()
		if !ok {
			nethttp.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(fsrv.Close)
	return fsrv
}

func (f *fileServer) set(path string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = body
}

func jarBytes(t *testing.T, entries ...archive.Entry) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "x.jar")
	require.NoError(t, archive.NewManager().CreateJar(context.Background(), path, entries))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

// fakeJava writes a shell script standing in for the java binary.
func fakeJava(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake java binary is a shell script")
	}
	path := filepath.Join(t.TempDir(), "java")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func newInstanceDir(t *testing.T, details *model.VersionDetails, isServer bool) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, details.Save(dir))
	require.NoError(t, model.NewInstanceConfig(2048, isServer).Save(dir))
	return dir
}

func testOptions(fsrv *fileServer) Options {
	return Options{
		PromotionsURL:       fsrv.URL + "/promotions_slim.json",
		MavenURL:            fsrv.URL + "/forge",
		NeoForgeVersionsURL: fsrv.URL + "/neoforge/versions",
		NeoForgeMavenURL:    fsrv.URL + "/neoforge",
	}
}

func newForge(t *testing.T, fsrv *fileServer, runtimes java.Manager) *Installer {
	t.Helper()
	client := http.NewHTTPClient(http.Options{RetryCount: -1})
	return New(client, download.NewManager(client), runtimes, linuxX64, testOptions(fsrv))
}

func newNeoForge(t *testing.T, fsrv *fileServer, runtimes java.Manager) *NeoForgeInstaller {
	t.Helper()
	client := http.NewHTTPClient(http.Options{RetryCount: -1})
	return NewNeoForge(client, download.NewManager(client), runtimes, linuxX64, testOptions(fsrv))
}

func expectJava(t *testing.T, javaBin string) *mock_java.MockManager {
	t.Helper()
	ctrl := gomock.NewController(t)
	runtimes := mock_java.NewMockManager(ctrl)
	runtimes.EXPECT().GetBinary(gomock.Any(), java.Java21, "java", gomock.Any()).Return(javaBin, nil)
	return runtimes
}

func modernForgeProfile(fsrv *fileServer) string {
	return fmt.Sprintf(`{
		"id": "1.20.1-forge-47.2.0",
		"mainClass": "cpw.mods.bootstraplauncher.BootstrapLauncher",
		"libraries": [
			{"name": "net.minecraftforge:forge:1.20.1-47.2.0:client", "downloads": {"artifact": {"path": "net/minecraftforge/forge/1.20.1-47.2.0/forge-1.20.1-47.2.0-client.jar", "url": ""}}},
			{"name": "net.minecraftforge:fmlcore:1.20.1-47.2.0", "downloads": {"artifact": {"path": "net/minecraftforge/fmlcore/1.20.1-47.2.0/fmlcore-1.20.1-47.2.0.jar", "url": ""}}},
			{"name": "net.minecraftforge:javafmllanguage:1.20.1-47.2.0", "downloads": {"artifact": {"path": "net/minecraftforge/javafmllanguage/1.20.1-47.2.0/javafmllanguage-1.20.1-47.2.0.jar", "url": ""}}},
			{"name": "cpw.mods:securejarhandler:2.1.10", "downloads": {"artifact": {"path": "cpw/mods/securejarhandler/2.1.10/securejarhandler-2.1.10.jar", "url": "%s/maven/cpw/mods/securejarhandler/2.1.10/securejarhandler-2.1.10.jar"}}},
			{"name": "org.example:gone:1.0", "url": "%s/maven/"}
		]
	}`, fsrv.URL, fsrv.URL)
}

// installerScript records its arguments and whether launcher profiles were
// present, then produces the fmlcore jar the way the real installer would.
const installerScript = `printf '%s\n' "$@" > java-args.txt
[ -f launcher_profiles.json ] && touch saw-profiles
mkdir -p libraries/net/minecraftforge/fmlcore/1.20.1-47.2.0
echo jar > libraries/net/minecraftforge/fmlcore/1.20.1-47.2.0/fmlcore-1.20.1-47.2.0.jar`

func TestRecommended(t *testing.T) {
	fsrv := newFileServer(t)
	fsrv.set("/promotions_slim.json", []byte(`{"promos":{
		"1.20.1-latest": "47.2.20",
		"1.20.1-recommended": "47.2.0",
		"1.20.2-latest": "48.1.0"
	}}`))
	i := newForge(t, fsrv, nil)

	v, err := i.Recommended(context.Background(), "1.20.1")
	require.NoError(t, err)
	assert.Equal(t, "47.2.0", v)

	v, err = i.Recommended(context.Background(), "1.20.2")
	require.NoError(t, err)
	assert.Equal(t, "48.1.0", v)

	_, err = i.Recommended(context.Background(), "1.99")
	assert.ErrorIs(t, err, errutils.ErrNoLoaderVersion)
}

func TestForgeInstall_Client(t *testing.T) {
	fsrv := newFileServer(t)
	fsrv.set("/promotions_slim.json", []byte(`{"promos":{"1.20.1-latest":"47.2.0"}}`))
	fsrv.set("/forge/1.20.1-47.2.0/forge-1.20.1-47.2.0-installer.jar",
		jarBytes(t, archive.Entry{Name: "version.json", Data: []byte(modernForgeProfile(fsrv))}))
	fsrv.set("/maven/cpw/mods/securejarhandler/2.1.10/securejarhandler-2.1.10.jar", []byte("sjh"))

	dir := newInstanceDir(t, mc1201, false)
	in := &loader.Install{Kind: loader.KindForge, InstanceDir: dir}
	i := newForge(t, fsrv, expectJava(t, fakeJava(t, installerScript)))
	require.NoError(t, i.Install(context.Background(), in, nil))

	forgeDir := filepath.Join(dir, DirName)
	assert.Equal(t, "47.2.0", in.LoaderVersion)
	assert.Equal(t, loader.StageDone, in.Stage())

	args, err := os.ReadFile(filepath.Join(forgeDir, "java-args.txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"-cp",
		filepath.Join(forgeDir, "forge-1.20.1-47.2.0-installer.jar"),
		filepath.Join(forgeDir, BootstrapFileName),
		"--installClient",
		".",
	}, strings.Fields(string(args)))
	assert.FileExists(t, filepath.Join(forgeDir, "saw-profiles"))
	assert.NoFileExists(t, filepath.Join(forgeDir, "launcher_profiles.json"))
	assert.NoFileExists(t, filepath.Join(forgeDir, "launcher_profiles_microsoft_store.json"))
	assert.FileExists(t, filepath.Join(forgeDir, DetailsFileName))

	cp, err := os.ReadFile(filepath.Join(forgeDir, ClasspathFileName))
	require.NoError(t, err)
	assert.Equal(t,
		"../forge/libraries/net/minecraftforge/fmlcore/1.20.1-47.2.0/fmlcore-1.20.1-47.2.0.jar:"+
			"../forge/libraries/cpw/mods/securejarhandler/2.1.10/securejarhandler-2.1.10.jar:",
		string(cp))
	clean, err := os.ReadFile(filepath.Join(forgeDir, CleanClasspathFileName))
	require.NoError(t, err)
	assert.Equal(t, "net.minecraftforge:fmlcore\nnet.minecraftforge:javafmllanguage\ncpw.mods:securejarhandler\norg.example:gone\n", string(clean))

	cfg, err := model.LoadInstanceConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, model.LoaderForge, cfg.ModType)
	assert.Equal(t, &model.ModTypeInfo{Version: "47.2.0"}, cfg.ModTypeInfo)
}

func TestForgeInstall_Server(t *testing.T) {
	fsrv := newFileServer(t)
	fsrv.set("/forge/1.20.1-47.2.0/forge-1.20.1-47.2.0-installer.jar",
		jarBytes(t, archive.Entry{Name: "version.json", Data: []byte(modernForgeProfile(fsrv))}))
	fsrv.set("/maven/cpw/mods/securejarhandler/2.1.10/securejarhandler-2.1.10.jar", []byte("sjh"))

	dir := newInstanceDir(t, mc1201, true)
	in := &loader.Install{Kind: loader.KindForge, InstanceDir: dir, LoaderVersion: "47.2.0", IsServer: true}
	script := installerScript + "\ntouch forge-1.20.1-47.2.0-installer.jar.log"
	require.NoError(t, newForge(t, fsrv, expectJava(t, fakeJava(t, script))).Install(context.Background(), in, nil))

	args, err := os.ReadFile(filepath.Join(dir, "java-args.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(args), "--installServer")
	assert.NoFileExists(t, filepath.Join(dir, "saw-profiles"))

	assert.NoDirExists(t, filepath.Join(dir, DirName))
	assert.NoFileExists(t, filepath.Join(dir, "forge-1.20.1-47.2.0-installer.jar.log"))
	profile, err := os.ReadFile(filepath.Join(dir, ServerDetailsFileName))
	require.NoError(t, err)
	assert.Contains(t, string(profile), "BootstrapLauncher")

	cp, err := os.ReadFile(filepath.Join(dir, ClasspathFileName))
	require.NoError(t, err)
	assert.Equal(t,
		"libraries/net/minecraftforge/fmlcore/1.20.1-47.2.0/fmlcore-1.20.1-47.2.0.jar:"+
			"libraries/cpw/mods/securejarhandler/2.1.10/securejarhandler-2.1.10.jar:",
		string(cp))
	assert.FileExists(t, filepath.Join(dir, CleanClasspathFileName))

	vanilla, err := model.LoadVersionDetails(dir)
	require.NoError(t, err)
	assert.Equal(t, "1.20.1", vanilla.ID)
}

func TestForgeInstall_InstallerFailure(t *testing.T) {
	fsrv := newFileServer(t)
	fsrv.set("/forge/1.20.1-47.2.0/forge-1.20.1-47.2.0-installer.jar",
		jarBytes(t, archive.Entry{Name: "version.json", Data: []byte(modernForgeProfile(fsrv))}))

	dir := newInstanceDir(t, mc1201, false)
	in := &loader.Install{Kind: loader.KindForge, InstanceDir: dir, LoaderVersion: "47.2.0"}
	i := newForge(t, fsrv, expectJava(t, fakeJava(t, `echo "processor failed" >&2; exit 3`)))

	err := i.Install(context.Background(), in, nil)
	var subErr *errutils.SubprocessError
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, 3, subErr.ExitCode)
	assert.Contains(t, subErr.Stderr, "processor failed")
	assert.ErrorIs(t, err, errutils.ErrSubprocess)

	assert.NoFileExists(t, filepath.Join(dir, DirName, "launcher_profiles.json"))
	cfg, err := model.LoadInstanceConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, model.LoaderVanilla, cfg.ModType)
}

func TestForgeInstall_UniversalJar(t *testing.T) {
	fsrv := newFileServer(t)
	profile := fmt.Sprintf(`{"versionInfo": {
		"id": "1.7.10-Forge10.13.4.1614-1.7.10",
		"mainClass": "net.minecraft.launchwrapper.Launch",
		"libraries": [
			{"name": "net.minecraftforge:forge:1.7.10-10.13.4.1614-1.7.10"},
			{"name": "com.typesafe:config:1.2.1", "url": "%s/maven/"},
			{"name": "org.scala-lang:scala-library:2.11.1", "clientreq": false}
		]
	}}`, fsrv.URL)
	fsrv.set("/forge/1.7.10-10.13.4.1614/forge-1.7.10-10.13.4.1614-universal.jar",
		jarBytes(t, archive.Entry{Name: "install_profile.json", Data: []byte(profile)}))
	fsrv.set("/maven/com/typesafe/config/1.2.1/config-1.2.1.jar", []byte("config"))

	dir := newInstanceDir(t, mc1710, false)
	in := &loader.Install{Kind: loader.KindForge, InstanceDir: dir, LoaderVersion: "10.13.4.1614"}
	// No runtime is requested: universal jars are not run.
	require.NoError(t, newForge(t, fsrv, nil).Install(context.Background(), in, nil))

	cp, err := os.ReadFile(filepath.Join(dir, DirName, ClasspathFileName))
	require.NoError(t, err)
	assert.Equal(t,
		"../forge/forge-1.7.10-10.13.4.1614-universal.jar:../forge/libraries/com/typesafe/config/1.2.1/config-1.2.1.jar:",
		string(cp))

	details, err := os.ReadFile(filepath.Join(dir, DirName, DetailsFileName))
	require.NoError(t, err)
	assert.Contains(t, string(details), "launchwrapper")
	assert.NotContains(t, string(details), "versionInfo")
}

func TestForgeInstall_NoInstallJSON(t *testing.T) {
	fsrv := newFileServer(t)
	fsrv.set("/forge/1.7.10-10.13.4.1614/forge-1.7.10-10.13.4.1614-universal.jar",
		jarBytes(t, archive.Entry{Name: "net/minecraftforge/Forge.class", Data: []byte("cafebabe")}))

	dir := newInstanceDir(t, mc1710, false)
	in := &loader.Install{Kind: loader.KindForge, InstanceDir: dir, LoaderVersion: "10.13.4.1614"}
	err := newForge(t, fsrv, nil).Install(context.Background(), in, nil)
	assert.ErrorIs(t, err, errutils.ErrNoInstallJSON)
}

func TestForgeInstall_LegacyRejected(t *testing.T) {
	fsrv := newFileServer(t)
	dir := newInstanceDir(t, mc147, false)
	in := &loader.Install{Kind: loader.KindForge, InstanceDir: dir}

	err := newForge(t, fsrv, nil).Install(context.Background(), in, nil)
	assert.ErrorIs(t, err, errutils.ErrLegacyForgeUnsupported)
	assert.NoDirExists(t, filepath.Join(dir, DirName))
}

func TestForgeInstall_NoInstaller(t *testing.T) {
	fsrv := newFileServer(t)
	dir := newInstanceDir(t, mc1201, false)
	in := &loader.Install{Kind: loader.KindForge, InstanceDir: dir, LoaderVersion: "47.9.9"}

	err := newForge(t, fsrv, nil).Install(context.Background(), in, nil)
	assert.ErrorIs(t, err, errutils.ErrNoLoaderVersion)
}

func TestNeoForgeInstall_OutdatedMinecraft(t *testing.T) {
	fsrv := newFileServer(t)
	dir := newInstanceDir(t, mc1201, false)
	in := &loader.Install{Kind: loader.KindNeoForge, InstanceDir: dir}

	err := newNeoForge(t, fsrv, nil).Install(context.Background(), in, nil)
	assert.ErrorIs(t, err, errutils.ErrNeoForgeOutdatedMinecraft)
}

func TestNeoForgeInstall_Server(t *testing.T) {
	fsrv := newFileServer(t)
	fsrv.set("/neoforge/versions", []byte(`{"isSnapshot":false,"versions":["20.2.86","20.4.80-beta","20.4.237","20.6.1"]}`))
	fsrv.set("/neoforge/20.4.237/neoforge-20.4.237-installer.jar", jarBytes(t, archive.Entry{Name: "install_profile.json", Data: []byte(`{}`)}))

	script := `printf '%s\n' "$@" > "$PWD/args.txt"
touch run.sh run.bat user_jvm_args.txt installer.jar.log
mkdir -p libraries/net/neoforged/neoforge/20.4.237
echo jar > libraries/net/neoforged/neoforge/20.4.237/neoforge-20.4.237-server.jar`

	dir := newInstanceDir(t, mc1204, true)
	in := &loader.Install{Kind: loader.KindNeoForge, InstanceDir: dir, IsServer: true}
	require.NoError(t, newNeoForge(t, fsrv, expectJava(t, fakeJava(t, script))).Install(context.Background(), in, nil))

	assert.Equal(t, "20.4.237", in.LoaderVersion)
	args, err := os.ReadFile(filepath.Join(dir, "args.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(args), "--installServer")

	for _, leftover := range []string{DirName, "run.sh", "run.bat", "user_jvm_args.txt", "installer.jar.log"} {
		assert.NoFileExists(t, filepath.Join(dir, leftover))
	}
	assert.NoDirExists(t, filepath.Join(dir, DirName))
	assert.FileExists(t, filepath.Join(dir, "libraries", "net", "neoforged", "neoforge", "20.4.237", "neoforge-20.4.237-server.jar"))

	cfg, err := model.LoadInstanceConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, model.LoaderNeoForge, cfg.ModType)
	assert.Equal(t, "20.4.237", cfg.ModTypeInfo.Version)
}

func TestNeoForgeInstall_Client(t *testing.T) {
	fsrv := newFileServer(t)
	profile := fmt.Sprintf(`{
		"id": "neoforge-20.4.237",
		"mainClass": "cpw.mods.bootstraplauncher.BootstrapLauncher",
		"libraries": [
			{"name": "net.neoforged.fancymodloader:loader:2.0.17", "downloads": {"artifact": {"path": "net/neoforged/fancymodloader/loader/2.0.17/loader-2.0.17.jar", "url": "%s/maven/net/neoforged/fancymodloader/loader/2.0.17/loader-2.0.17.jar"}}}
		]
	}`, fsrv.URL)
	fsrv.set("/neoforge/20.4.237/neoforge-20.4.237-installer.jar", jarBytes(t, archive.Entry{Name: "version.json", Data: []byte(profile)}))
	fsrv.set("/maven/net/neoforged/fancymodloader/loader/2.0.17/loader-2.0.17.jar", []byte("fml"))

	dir := newInstanceDir(t, mc1204, false)
	in := &loader.Install{Kind: loader.KindNeoForge, InstanceDir: dir, LoaderVersion: "20.4.237"}
	require.NoError(t, newNeoForge(t, fsrv, expectJava(t, fakeJava(t, "exit 0"))).Install(context.Background(), in, nil))

	forgeDir := filepath.Join(dir, DirName)
	assert.FileExists(t, filepath.Join(forgeDir, neoForgeInstallerName))
	assert.FileExists(t, filepath.Join(forgeDir, DetailsFileName))
	assert.NoFileExists(t, filepath.Join(forgeDir, "launcher_profiles.json"))

	cp, err := os.ReadFile(filepath.Join(forgeDir, ClasspathFileName))
	require.NoError(t, err)
	assert.Equal(t, "../forge/libraries/net/neoforged/fancymodloader/loader/2.0.17/loader-2.0.17.jar:", string(cp))
}
