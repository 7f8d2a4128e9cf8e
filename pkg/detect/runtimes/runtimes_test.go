package runtimes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unibuild/pkg/detect"
	"unibuild/pkg/detect/frameworks"
	"unibuild/pkg/types"
)

func serviceInput(t *testing.T, files map[string]string, manifest string) *detect.Input {
	t.Helper()
	root := t.TempDir()
	scan := &types.ScanResult{Extensions: map[string]int{}}
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
		scan.Files = append(scan.Files, rel)
	}
	in := &detect.Input{RepoPath: root, Dir: ".", Scan: scan}
	if manifest != "" {
		in.ManifestContent = []byte(files[manifest])
	}
	return in
}

func TestNodeExtractsPortEnvAndHealth(t *testing.T) {
	in := serviceInput(t, map[string]string{
		"server.js": `const app = express()
app.get('/healthz', ok)
const db = process.env.DATABASE_URL
app.listen(process.env.PORT || 4000)
`,
	}, "")

	rc, ok := Node().TryExtract(in, nil)
	require.True(t, ok)
	assert.Equal(t, 4000, rc.Port)
	assert.Equal(t, []string{"DATABASE_URL", "PORT"}, rc.EnvVars)
	require.NotNil(t, rc.Health)
	assert.Equal(t, "/healthz", rc.Health.Endpoint)
	assert.Equal(t, "server.js", rc.Entrypoint)
	assert.Equal(t, "node server.js", Node().StartCommand(rc.Entrypoint))
}

func TestPythonExtractsRunPort(t *testing.T) {
	in := serviceInput(t, map[string]string{
		"app.py": "import os\napp.run(host=\"0.0.0.0\", port=5001)\nsecret = os.environ[\"SECRET_KEY\"]\n",
	}, "")

	rc, ok := Python().TryExtract(in, nil)
	require.True(t, ok)
	assert.Equal(t, 5001, rc.Port)
	assert.Equal(t, []string{"SECRET_KEY"}, rc.EnvVars)
	assert.Equal(t, "app.py", rc.Entrypoint)
}

func TestFrameworkDefaultsFillMissingFindings(t *testing.T) {
	in := serviceInput(t, map[string]string{
		"src/main/java/App.java": "public class App { public static void main(String[] a) {} }",
	}, "")

	rc, ok := JVM().TryExtract(in, frameworks.SpringBoot())
	require.True(t, ok)
	assert.Equal(t, 8080, rc.Port)
	require.NotNil(t, rc.Health)
	assert.Equal(t, "/actuator/health", rc.Health.Endpoint)
}

func TestParsedConfigBeatsDefaultsButNotSource(t *testing.T) {
	// server.port in application.properties overrides the 8080 default.
	in := serviceInput(t, map[string]string{
		"src/main/java/App.java":         "public class App {}",
		"src/main/resources/application.properties": "server.port=9443\n",
	}, "")
	rc, ok := JVM().TryExtract(in, frameworks.SpringBoot())
	require.True(t, ok)
	assert.Equal(t, 9443, rc.Port)

	// An explicit source binding wins over the parsed config.
	in = serviceInput(t, map[string]string{
		"src/main/java/App.java":         "new ServerSocket(7000);",
		"src/main/resources/application.properties": "server.port=9443\n",
	}, "")
	rc, ok = JVM().TryExtract(in, frameworks.SpringBoot())
	require.True(t, ok)
	assert.Equal(t, 7000, rc.Port)
}

func TestEmptyConfigIsValid(t *testing.T) {
	in := serviceInput(t, map[string]string{"src/main.rs": "fn main() {}"}, "")

	rc, ok := Native().TryExtract(in, nil)
	require.True(t, ok)
	assert.True(t, rc.Empty())
}

func TestNativeDepsFromManifest(t *testing.T) {
	in := serviceInput(t, map[string]string{
		"requirements.txt": "psycopg2-binary==2.9\npillow>=10\n",
	}, "requirements.txt")

	rc, ok := Python().TryExtract(in, nil)
	require.True(t, ok)
	assert.Equal(t, []string{"libjpeg-turbo", "libpq"}, rc.NativeDeps)
}

func TestGoListenPattern(t *testing.T) {
	in := serviceInput(t, map[string]string{
		"main.go": "package main\nfunc main() { http.ListenAndServe(\":8090\", nil) }\n",
	}, "")

	rc, ok := Native().TryExtract(in, nil)
	require.True(t, ok)
	assert.Equal(t, 8090, rc.Port)
}
