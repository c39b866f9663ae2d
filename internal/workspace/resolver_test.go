package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestResolver_ScanDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "App", "App.csproj"), "<Project/>")
	writeFile(t, filepath.Join(dir, "tests", "App.Tests", "App.Tests.csproj"), "<Project/>")
	writeFile(t, filepath.Join(dir, "tests", "App.Tests", "bin", "Skip.csproj"), "<Project/>")
	writeFile(t, filepath.Join(dir, ".git", "Hidden.csproj"), "<Project/>")

	resolver := NewResolver([]string{"bin", "obj"})
	projects, err := resolver.Resolve(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d: %v", len(projects), projects)
	}
}

func TestResolver_SingleProject(t *testing.T) {
	dir := t.TempDir()
	proj := filepath.Join(dir, "App.Tests.csproj")
	writeFile(t, proj, "<Project/>")

	resolver := NewResolver(nil)
	projects, err := resolver.Resolve(proj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(projects) != 1 || projects[0] != proj {
		t.Errorf("expected [%s], got %v", proj, projects)
	}
}

func TestResolver_Solution(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tests", "Unit.Tests", "Unit.Tests.csproj"), "<Project/>")
	writeFile(t, filepath.Join(dir, "src", "App", "App.csproj"), "<Project/>")

	sln := `Microsoft Visual Studio Solution File, Format Version 12.00
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Unit.Tests", "tests\Unit.Tests\Unit.Tests.csproj", "{11111111-1111-1111-1111-111111111111}"
EndProject
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "App", "src\App\App.csproj", "{22222222-2222-2222-2222-222222222222}"
EndProject
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Gone", "src\Gone\Gone.csproj", "{33333333-3333-3333-3333-333333333333}"
EndProject
Project("{2150E333-8FDC-42A3-9474-1A3956D46DE8}") = "Solution Items", "Solution Items", "{44444444-4444-4444-4444-444444444444}"
EndProject
`
	slnPath := filepath.Join(dir, "All.sln")
	writeFile(t, slnPath, sln)

	resolver := NewResolver(nil)
	projects, err := resolver.Resolve(slnPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Gone.csproj does not exist on disk and the folder entry is not a
	// project, so only two paths survive.
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d: %v", len(projects), projects)
	}
	if filepath.Base(projects[0]) != "Unit.Tests.csproj" {
		t.Errorf("unexpected first project: %s", projects[0])
	}
}

func TestResolver_DirectoryPrefersSolution(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Only.Tests", "Only.Tests.csproj"), "<Project/>")
	writeFile(t, filepath.Join(dir, "Other", "Other.csproj"), "<Project/>")
	sln := `Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Only.Tests", "Only.Tests\Only.Tests.csproj", "{11111111-1111-1111-1111-111111111111}"
EndProject
`
	writeFile(t, filepath.Join(dir, "Work.sln"), sln)

	resolver := NewResolver(nil)
	projects, err := resolver.Resolve(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(projects) != 1 || filepath.Base(projects[0]) != "Only.Tests.csproj" {
		t.Errorf("expected solution projects only, got %v", projects)
	}
}
