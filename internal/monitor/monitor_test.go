package monitor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opsboard-dev/opsd/internal/sources"
)

func TestMonitorChecksSources(t *testing.T) {
	okDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(okDir, "server.log"), []byte("x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	emptyDir := t.TempDir()

	manifestPath := filepath.Join(t.TempDir(), "sources.yml")
	manifest := `
sources:
  - name: svn
    dir: ` + okDir + `
    filename: server.log
  - name: jira
    dir: ` + emptyDir + `
    filename: app.log
`
	if err := os.WriteFile(manifestPath, []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := sources.Parse(manifestPath)
	if err != nil {
		t.Fatal(err)
	}

	mon := New(m, time.Hour)
	mon.check()

	svn, ok := mon.Status("svn")
	if !ok || !svn.Available {
		t.Errorf("svn status = %+v, want available", svn)
	}
	if svn.Path != filepath.Join(okDir, "server.log") {
		t.Errorf("svn path = %q", svn.Path)
	}

	jira, ok := mon.Status("jira")
	if !ok {
		t.Fatal("jira status missing")
	}
	if jira.Available {
		t.Error("jira reported available with no log file")
	}
	if jira.Error == "" {
		t.Error("jira status missing error detail")
	}

	all := mon.All()
	if len(all) != 2 {
		t.Errorf("All() = %d entries, want 2", len(all))
	}
}
