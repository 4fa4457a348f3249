package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyDoc = `<WeengzAir>
  <Usuarios>
    <Usuario email="ana@example.com" esVip="true"><nombreCompleto>Ana Lopez</nombreCompleto></Usuario>
  </Usuarios>
  <Reservaciones>
    <Reservacion>
      <asiento>3B</asiento>
      <usuario>ana@example.com</usuario>
      <pasajero><nombreCompleto>Ana Lopez</nombreCompleto><cui>CUI-1</cui></pasajero>
      <detalles><fechaReservacion>05/03/2024 10:15</fechaReservacion><precioBase>120.50</precioBase></detalles>
    </Reservacion>
    <Reservacion>
      <asiento>99Z</asiento>
      <usuario>ana@example.com</usuario>
    </Reservacion>
  </Reservaciones>
</WeengzAir>`

type cliEnv struct {
	dir    string
	dbPath string
}

func setupCLI(t *testing.T) cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AUDIT_DIR", filepath.Join(dir, "audit"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("REDIS_ADDRESS", "")
	return cliEnv{dir: dir, dbPath: filepath.Join(dir, "cli.db")}
}

func (e cliEnv) run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append(args, "--env-file", filepath.Join(e.dir, "missing.env"))
	code := Execute("1.2.3", args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func (e cliEnv) writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVersion(t *testing.T) {
	env := setupCLI(t)

	out, _, code := env.run(t, "version")

	assert.Equal(t, 0, code)
	assert.Equal(t, "weengz-air 1.2.3\n", out)
}

func TestImportExportPurge(t *testing.T) {
	env := setupCLI(t)
	doc := env.writeDoc(t, "legacy.xml", legacyDoc)

	out, errOut, code := env.run(t, "import", "--file", doc, "--db", env.dbPath)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Import finished. Successes: 2, Failures: 1.")
	assert.Contains(t, out, "99Z/ana@example.com")

	exportPath := filepath.Join(env.dir, "out.xml")
	out, errOut, code = env.run(t, "export", "--output", exportPath, "--db", env.dbPath)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Exported 1 reservations.")
	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<seatNumber>3B</seatNumber>")
	assert.Contains(t, string(data), "5/3/2024, 10:15:00")

	_, errOut, code = env.run(t, "purge", "--confirm", "nope", "--db", env.dbPath)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "purge not confirmed")

	out, errOut, code = env.run(t, "purge", "--confirm", "borrar", "--db", env.dbPath)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Purged 1 reservations")

	out, _, code = env.run(t, "export", "--output", "-", "--db", env.dbPath)
	require.Equal(t, 0, code)
	assert.NotContains(t, out, "<flightSeat>")
}

func TestImport_DryRun(t *testing.T) {
	env := setupCLI(t)
	doc := env.writeDoc(t, "legacy.xml", legacyDoc)

	out, errOut, code := env.run(t, "import", "--file", doc, "--db", env.dbPath, "--dry-run")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Format: legacy")
	assert.Contains(t, out, "Stage usuarios: 1 operations")
	assert.Contains(t, out, "Stage reservaciones: 2 operations")

	// Nothing was written.
	out, _, code = env.run(t, "export", "--output", "-", "--db", env.dbPath)
	require.Equal(t, 0, code)
	assert.NotContains(t, out, "<flightSeat>")
}

func TestImport_Errors(t *testing.T) {
	env := setupCLI(t)

	_, errOut, code := env.run(t, "import", "--db", env.dbPath)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `required flag(s) "file" not set`)

	_, errOut, code = env.run(t, "import", "--file", filepath.Join(env.dir, "nope.xml"), "--db", env.dbPath)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "failed to open")

	bad := env.writeDoc(t, "bad.xml", "<Usuarios><Usuario>")
	_, errOut, code = env.run(t, "import", "--file", bad, "--db", env.dbPath)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "error processing XML")

	other := env.writeDoc(t, "other.xml", "<catalog><book/></catalog>")
	out, errOut, code := env.run(t, "import", "--file", other, "--db", env.dbPath)
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(out, "Unrecognized XML format"))
	assert.Contains(t, errOut, "unrecognized XML format")
}
