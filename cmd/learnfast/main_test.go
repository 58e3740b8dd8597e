package main

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aanand-mishra/learnfast-registration/internal/http/server"
	"github.com/aanand-mishra/learnfast-registration/internal/metrics"
	"github.com/aanand-mishra/learnfast-registration/internal/password"
	"github.com/aanand-mishra/learnfast-registration/internal/registration"
	"github.com/aanand-mishra/learnfast-registration/internal/storage/jsondb"
)

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := jsondb.Open(jsondb.NewMemoryBackend())
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	svc := registration.New(store, password.NewHasher(bcrypt.MinCost))
	srv := httptest.NewServer(server.NewRouter(svc, metrics.New(reg), reg))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestQuickCommand(t *testing.T) {
	srv := newAPI(t)
	state := filepath.Join(t.TempDir(), "state.json")
	common := []string{"--api-url", srv.URL, "--state", state, "--redirect-delay", "1ms"}

	out, _, err := execute(t, append([]string{"quick", "--email", "a@b.com", "--password", "longenough"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Quick registration successful!")
	assert.Contains(t, out, "continue at "+srv.URL+"/#register")

	_, errOut, err := execute(t, append([]string{"quick", "--email", "a@b.com", "--password", "longenough"}, common...)...)
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, errOut, "Error: Email already registered")
}

func TestQuickCommandValidation(t *testing.T) {
	_, errOut, err := execute(t, "quick", "--api-url", "http://127.0.0.1:1", "--email", "nope", "--password", "short")
	require.ErrorIs(t, err, errReported)
	assert.Equal(t, "email: Invalid email\npassword: Password too short\n", errOut)
}

func TestRegisterUsesCachedInput(t *testing.T) {
	srv := newAPI(t)
	state := filepath.Join(t.TempDir(), "state.json")
	common := []string{"--api-url", srv.URL, "--state", state}

	out, _, err := execute(t, append([]string{"prefill"}, common...)...)
	require.NoError(t, err)
	assert.Equal(t, "nothing cached\n", out)

	out, _, err = execute(t, append([]string{"register",
		"--firstname", "Ada", "--lastname", "Lovelace",
		"--email", "ada@example.com", "--password", "analytical", "--terms",
	}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Registration complete! Welcome to LearnFast.")

	out, _, err = execute(t, append([]string{"prefill"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "firstname: Ada")
	assert.Contains(t, out, "ada@example.com")

	// firstname and email come from the cache; the email is already a
	// student, so the server answers with a conflict.
	_, errOut, err := execute(t, append([]string{"register",
		"--lastname", "Byron", "--password", "analytical", "--terms",
	}, common...)...)
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, errOut, "Error: Student already exists")
}
