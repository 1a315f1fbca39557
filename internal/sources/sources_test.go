package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opsboard-dev/opsd/internal/logline"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseManifest(t *testing.T) {
	path := writeManifest(t, `
sources:
  - name: svn
    dir: /var/log/svn
    filename: server.log
    clean: true
  - name: jenkins
    dir: /var/log/jenkins
    filename: audit.jsonl
  - name: jira
    dir: /var/log/jira
    filename: app.log
    format: json
`)

	m, err := Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Names(); len(got) != 3 || got[0] != "jenkins" || got[1] != "jira" || got[2] != "svn" {
		t.Errorf("names = %v", got)
	}

	svn, ok := m.Get("svn")
	if !ok {
		t.Fatal("svn source missing")
	}
	if !svn.Clean {
		t.Error("svn clean default not loaded")
	}
	if svn.LogFormat() != logline.FormatText {
		t.Errorf("svn format = %s, want text", svn.LogFormat())
	}
	if svn.Suffix != ".log" {
		t.Errorf("svn suffix = %q, want default .log", svn.Suffix)
	}

	// Format inferred from the .jsonl extension.
	jenkins, _ := m.Get("jenkins")
	if jenkins.LogFormat() != logline.FormatJSON {
		t.Errorf("jenkins format = %s, want json", jenkins.LogFormat())
	}

	// Explicit format wins over the extension.
	jira, _ := m.Get("jira")
	if jira.LogFormat() != logline.FormatJSON {
		t.Errorf("jira format = %s, want json", jira.LogFormat())
	}
}

func TestParseManifestRejectsDuplicates(t *testing.T) {
	path := writeManifest(t, `
sources:
  - name: svn
    dir: /a
  - name: svn
    dir: /b
`)
	if _, err := Parse(path); err == nil {
		t.Fatal("expected duplicate-name error")
	}
}

func TestParseManifestRejectsEmptyName(t *testing.T) {
	path := writeManifest(t, `
sources:
  - dir: /a
`)
	if _, err := Parse(path); err == nil {
		t.Fatal("expected empty-name error")
	}
}

func TestParseManifestMissingFile(t *testing.T) {
	if _, err := Parse(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}
