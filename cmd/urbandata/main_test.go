package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"urbandata/internal/config"
	"urbandata/internal/testsupport"
)

const collegesExport = "libelle;arr_libelle;arr_insee\nCollège Montaigne;6e;75106\n"

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	portal     *testsupport.Portal
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	portal := testsupport.NewPortal(t, map[string]testsupport.Route{
		"/colleges.csv": {Body: []byte(collegesExport)},
	})
	opts = append([]testsupport.ConfigOption{testsupport.WithDatasets(
		config.Dataset{Name: "colleges", URL: portal.URL("/colleges.csv")},
		config.Dataset{Name: "bibliotheques", Kind: "custom", URL: portal.URL("/bibliotheques.csv")},
	)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)

	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, portal: portal}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack string, needles ...string) {
	t.Helper()
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
		}
	}
}

func TestRootCommandRunsPipeline(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, nil, env.configPath)
	if err != nil {
		t.Fatalf("dataset failures must not fail the command: %v", err)
	}
	requireContains(t, out, "colleges", "fetched", "cleaned", "bibliotheques", "failed", "1 fetched, 0 skipped, 1 cleaned, 2 failed")

	clean := testsupport.ReadFile(t, filepath.Join(env.cfg.Paths.CleanDir, "colleges_clean.csv"))
	requireContains(t, clean, "Collège Montaigne")

	out, _, err = runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "raw file present", "0 fetched, 1 skipped")
	if hits := env.portal.Hits("/colleges.csv"); hits != 1 {
		t.Fatalf("expected a single download across runs, got %d", hits)
	}
}

func TestFetchAndCleanSubcommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"fetch", "colleges"}, env.configPath)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	requireContains(t, out, "1 fetched")
	if env.portal.Hits("/bibliotheques.csv") != 0 {
		t.Fatal("fetch with a name should not touch other datasets")
	}

	out, _, err = runCLI(t, []string{"clean", "colleges"}, env.configPath)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	requireContains(t, out, "1 cleaned, 0 failed")

	_, _, err = runCLI(t, []string{"clean", "nope"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "unknown dataset") {
		t.Fatalf("expected unknown dataset error, got %v", err)
	}
}

func TestDatasetsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"datasets", "--urls"}, env.configPath)
	if err != nil {
		t.Fatalf("datasets: %v", err)
	}
	requireContains(t, out, "colleges", "colleges_clean.csv", "custom (no recipe)", env.portal.URL("/colleges.csv"), "';'")
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithCatalog())
	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out,
		"== Checks ==",
		"Bronze directory:",
		"Catalog:",
		"== Datasets ==",
		"== Last run ==",
		"1 fetched, 0 skipped, 1 cleaned, 2 failed",
		env.configPath,
	)
	if strings.Contains(out, ansiReset) {
		t.Fatal("status should not colorize non-terminal output")
	}
}

func TestConfigInitValidateShow(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Chdir(tmp)
	target := filepath.Join(tmp, "conf", "urbandata.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid", fmt.Sprintf("Config path: %s", target), "Datasets: 7")

	out, _, err = runCLI(t, []string{"config", "show"}, target)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[paths]", "raw_dir", "[[datasets]]", "logement_sociaux")
}

func TestInvalidConfigFails(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	path := filepath.Join(tmp, "bad.toml")
	if err := os.WriteFile(path, []byte("[fetch]\nworkers = 100\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, []string{"datasets"}, path); err == nil {
		t.Fatal("expected invalid config to fail")
	}
}

func TestRenderStatusLine(t *testing.T) {
	got := renderStatusLine("Bronze directory", statusError, "missing", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Bronze directory:", "[ERROR] missing")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
	colored := renderStatusLine("Catalog", statusOK, "", true)
	if !strings.HasPrefix(colored, ansiGreen) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected green line, got %q", colored)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Fatalf("truncate = %q", got)
	}
}
