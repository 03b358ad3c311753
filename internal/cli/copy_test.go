package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/veilbreak/internal/config"
)

// modSource creates a mod source tree with shippable files and development
// artifacts.
func modSource(t *testing.T) string {
	t.Helper()

	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"modinfo.json":           `[{"type": "MOD_INFO", "id": "magiclysm_veilbreak", "version": "0.2.0"}]`,
		"monster_blacklist.json": "[]",
		"monsters/wizard.json":   monsterFile("mon_wizard"),
		"README.md":              "# Veilbreak",
		"utils/copy.ts":          "export {}",
		".env":                   "USER_MOD_DIR=/nowhere",
		"scratch/notes.json":     "{}",
	})

	return src
}

func TestCopy_InstallsIntoUserModDir(t *testing.T) {
	isolateEnv(t)

	src := modSource(t)
	mods := t.TempDir()
	t.Setenv(config.EnvUserModDir, mods)

	stdout, _, err := executeCommand("copy", "--source", src)
	require.NoError(t, err)

	dest := filepath.Join(mods, config.DefaultModName)
	assert.Contains(t, stdout, "Copying mod files to: "+dest)
	assert.Contains(t, stdout, "Copied: monsters/wizard.json")
	assert.Contains(t, stdout, "Done. Copied 4 file(s)")

	assert.FileExists(t, filepath.Join(dest, "modinfo.json"))
	assert.FileExists(t, filepath.Join(dest, "monsters", "wizard.json"))
	assert.NoFileExists(t, filepath.Join(dest, "README.md"))
	assert.NoFileExists(t, filepath.Join(dest, ".env"))
	assert.NoDirExists(t, filepath.Join(dest, "utils"))
}

func TestCopy_ModNameAndDest(t *testing.T) {
	isolateEnv(t)

	src := modSource(t)
	mods := t.TempDir()
	t.Setenv(config.EnvUserModDir, mods)

	_, _, err := executeCommand("copy", "--source", src, "--mod-name", "veilbreak_dev")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(mods, "veilbreak_dev", "modinfo.json"))

	dest := filepath.Join(t.TempDir(), "explicit")

	_, _, err = executeCommand("copy", "--source", src, "--dest", dest)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dest, "modinfo.json"))

	_, _, err = executeCommand("copy", "--source", src, "--mod-name", "../escape")
	requireExitCode(t, err, ExitUsage)
}

func TestCopy_ExcludeFlags(t *testing.T) {
	isolateEnv(t)

	src := modSource(t)
	dest := filepath.Join(t.TempDir(), "out")

	stdout, _, err := executeCommand("copy", "--source", src, "--dest", dest, "--exclude", "=scratch", "-v")
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(dest, "scratch"))
	assert.Contains(t, stdout, "Skipped: scratch (=scratch)")
	assert.Contains(t, stdout, "Skipped: README.md (*.md)")
	assert.Contains(t, stdout, "Exclusion rules: =.env* =.git*")
	assert.Contains(t, stdout, " =scratch\n")

	all := filepath.Join(t.TempDir(), "all")

	_, _, err = executeCommand("copy", "--source", src, "--dest", all, "--no-default-excludes")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(all, "README.md"))
	assert.FileExists(t, filepath.Join(all, "utils", "copy.ts"))

	_, _, err = executeCommand("copy", "--source", src, "--dest", all, "--exclude", "[bad")
	requireExitCode(t, err, ExitUsage)
}

func TestCopy_ConfigFileSection(t *testing.T) {
	isolateEnv(t)

	src := modSource(t)
	mods := t.TempDir()
	t.Setenv(config.EnvUserModDir, mods)

	cfgFile := filepath.Join(t.TempDir(), "veilbreak.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("copy:\n  modName: from_config\n  exclude:\n    - \"=scratch\"\n"), 0o600))

	_, _, err := executeCommand("--config", cfgFile, "copy", "--source", src)
	require.NoError(t, err)

	dest := filepath.Join(mods, "from_config")
	assert.FileExists(t, filepath.Join(dest, "modinfo.json"))
	assert.NoDirExists(t, filepath.Join(dest, "scratch"))

	_, _, err = executeCommand("--config", cfgFile, "copy", "--source", src, "--mod-name", "from_flag")
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(mods, "from_flag"))
}

func TestCopy_InvalidConfigSection(t *testing.T) {
	isolateEnv(t)

	cfgFile := filepath.Join(t.TempDir(), "veilbreak.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("copy:\n  modName: a/b\n"), 0o600))

	_, _, err := executeCommand("--config", cfgFile, "copy", "--source", modSource(t), "--dest", t.TempDir())
	requireExitCode(t, err, ExitUsage)
	assert.Contains(t, err.Error(), "copy.modName")
}

func TestCopy_DryRun(t *testing.T) {
	isolateEnv(t)

	src := modSource(t)
	dest := filepath.Join(t.TempDir(), "out")

	stdout, _, err := executeCommand("copy", "--source", src, "--dest", dest, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Would copy: modinfo.json")
	assert.NoDirExists(t, dest)
}

func TestCopy_MissingUserModDir(t *testing.T) {
	isolateEnv(t)

	_, _, err := executeCommand("copy", "--source", modSource(t))
	requireExitCode(t, err, ExitUsage)
	assert.Contains(t, err.Error(), "USER_MOD_DIR is not set")
}

func TestCopy_RefusesDowngrade(t *testing.T) {
	isolateEnv(t)

	src := modSource(t)
	dest := t.TempDir()
	writeFiles(t, dest, map[string]string{
		"modinfo.json": `[{"type": "MOD_INFO", "id": "magiclysm_veilbreak", "version": "1.0.0"}]`,
	})

	_, _, err := executeCommand("copy", "--source", src, "--dest", dest)
	requireExitCode(t, err, ExitRuntime)
	assert.Contains(t, err.Error(), "--force")

	_, _, err = executeCommand("copy", "--source", src, "--dest", dest, "--force")
	require.NoError(t, err)
}

func TestCopy_DestinationInsideSource(t *testing.T) {
	isolateEnv(t)

	src := modSource(t)

	_, _, err := executeCommand("copy", "--source", src, "--dest", filepath.Join(src, "install"))
	requireExitCode(t, err, ExitRuntime)
	assert.Contains(t, err.Error(), "inside source")
}

// ---------------------------------------------------------------------------
// Watch
// ---------------------------------------------------------------------------

func TestWatch_ArgumentErrors(t *testing.T) {
	isolateEnv(t)

	src := modSource(t)

	_, _, err := executeCommand("watch", "--source", src)
	requireExitCode(t, err, ExitUsage)
	assert.Contains(t, err.Error(), "USER_MOD_DIR")

	_, _, err = executeCommand("watch", "--source", src, "--dest", t.TempDir(), "--debounce", "0s")
	requireExitCode(t, err, ExitUsage)

	_, _, err = executeCommand("watch", "--source", filepath.Join(t.TempDir(), "missing"), "--dest", t.TempDir())
	requireExitCode(t, err, ExitRuntime)
}
