package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sliramanoel/venda/internal/pix"
	"github.com/sliramanoel/venda/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`server:
  mode: test
database:
  driver: sqlite
  path: %s
auth:
  jwt_secret: cli-test-secret
payment:
  test_mode: true
  merchant_name: Loja Teste
`, filepath.Join(dir, "venda.db"))

	path := filepath.Join(dir, "venda.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCommand()

	for _, path := range [][]string{
		{"serve"},
		{"migrate"},
		{"admin", "create"},
		{"admin", "list"},
		{"admin", "passwd"},
		{"orders", "list"},
		{"orders", "status"},
		{"orders", "history"},
		{"pix", "decode"},
		{"pix", "generate"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestPixDecode(t *testing.T) {
	payload := pix.Generator{MerchantName: "Loja Teste"}.Payload("order-123", 194)

	out, err := run(t, "pix", "decode", payload)
	require.NoError(t, err)
	assert.Contains(t, out, "Loja Teste")
	assert.Contains(t, out, "194.00")
	assert.Contains(t, out, "26.01")
	assert.Contains(t, out, "62.05")
	assert.Contains(t, out, "CRC OK")
}

func TestPixDecodeBadChecksum(t *testing.T) {
	payload := pix.Generator{}.Payload("order-123", 10)
	tampered := payload[:len(payload)-4] + "0000"
	if tampered == payload {
		tampered = payload[:len(payload)-4] + "FFFF"
	}

	out, err := run(t, "pix", "decode", tampered)
	require.ErrorIs(t, err, pix.ErrChecksum)
	assert.Contains(t, out, "10.00", "fields are still printed")
	assert.NotContains(t, out, "CRC OK")
}

func TestPixDecodeMalformed(t *testing.T) {
	_, err := run(t, "pix", "decode", "00029")
	assert.ErrorIs(t, err, pix.ErrMalformed)
}

func TestPixGenerate(t *testing.T) {
	cfgPath := writeConfig(t)

	out, err := run(t, "--config", cfgPath, "pix", "generate", "order-9", "49.9")
	require.NoError(t, err)

	fields, err := pix.Decode(strings.TrimSpace(out))
	require.NoError(t, err)
	amount, ok := pix.Lookup(fields, "54")
	require.True(t, ok)
	assert.Equal(t, "49.90", amount)
	name, _ := pix.Lookup(fields, "59")
	assert.Equal(t, "Loja Teste", name)

	_, err = run(t, "--config", cfgPath, "pix", "generate", "order-9", "abc")
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	out, err := run(t, "--config", writeConfig(t), "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "migrate")
	assert.Error(t, err)
}

func TestAdminCommands(t *testing.T) {
	cfgPath := writeConfig(t)

	out, err := run(t, "--config", cfgPath, "admin", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No accounts found.")

	out, err = run(t, "--config", cfgPath, "admin", "create", "--email", "ops@loja.com", "--password", "secret1", "--role", "operator")
	require.NoError(t, err)
	assert.Contains(t, out, "Created operator ops@loja.com")

	_, err = run(t, "--config", cfgPath, "admin", "create", "--email", "ops@loja.com", "--password", "secret1")
	assert.ErrorIs(t, err, service.ErrEmailTaken)

	_, err = run(t, "--config", cfgPath, "admin", "create", "--email", "x@loja.com", "--password", "123")
	assert.Error(t, err)

	out, err = run(t, "--config", cfgPath, "admin", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ops@loja.com")

	out, err = run(t, "--config", cfgPath, "admin", "passwd", "--email", "ops@loja.com", "--password", "another1")
	require.NoError(t, err)
	assert.Contains(t, out, "Password updated for ops@loja.com")

	_, err = run(t, "--config", cfgPath, "admin", "passwd", "--email", "nobody@loja.com", "--password", "another1")
	assert.Error(t, err)
}

func TestOrdersCommands(t *testing.T) {
	cfgPath := writeConfig(t)

	out, err := run(t, "--config", cfgPath, "orders", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No orders found.")

	_, err = run(t, "--config", cfgPath, "orders", "list", "--status", "lost")
	assert.ErrorIs(t, err, service.ErrInvalidStatus)

	_, err = run(t, "--config", cfgPath, "orders", "status", "NV-MISSING", "paid")
	assert.ErrorIs(t, err, service.ErrOrderNotFound)

	_, err = run(t, "--config", cfgPath, "orders", "history", "NV-MISSING")
	assert.ErrorIs(t, err, service.ErrOrderNotFound)
}
