package repo

import (
	"strings"
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/stretchr/testify/require"
)

func TestConfig_GetSet(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		_, ok, err := r.ConfigValue("user.name")
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, r.SetConfig("user.name", "Robin Vale"))
		v, ok, err := r.ConfigValue("user.name")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "Robin Vale", v)

		v, _, err = r.ConfigValue("core.bare")
		require.NoError(t, err)
		require.Equal(t, "false", v, "defaults survive unrelated writes")

		raw, err := r.Backend.Get(".git/config")
		require.NoError(t, err)
		require.Contains(t, string(raw), "[user]")
		require.Contains(t, string(raw), "[core]")
	})
}

func TestConfig_SubsectionKey(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		require.NoError(t, r.SetConfig("branch.main.remote", "origin"))
		v, ok, err := r.ConfigValue("branch.main.remote")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "origin", v)
	})
}

func TestConfig_InvalidKey(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		for _, key := range []string{"", "noDot", ".leading", "trailing."} {
			_, _, err := r.ConfigValue(key)
			require.True(t, errors.Is(err, ErrUnknownConfigKey), "key %q: got %v", key, err)
			require.True(t, errors.Is(r.SetConfig(key, "x"), ErrUnknownConfigKey), "key %q", key)
		}
	})
}

func TestConfig_MissingFile(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		require.NoError(t, r.Backend.Clear())
		require.NoError(t, r.Backend.Mkdir("/.git"))

		cfg, err := r.ReadConfig()
		require.NoError(t, err)
		require.Len(t, cfg.Section("core").Keys(), 0)
	})
}

func TestSignature(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		at := time.Unix(1234567890, 0).In(time.FixedZone("", -(5*3600 + 30*60)))

		sig, err := r.Signature(at)
		require.NoError(t, err)
		require.Equal(t, "unknown <unknown@localhost> 1234567890 -0530", sig)

		require.NoError(t, r.SetConfig("user.name", "  Robin Vale "))
		require.NoError(t, r.SetConfig("user.email", "robin@example.com"))
		sig, err = r.Signature(at.UTC())
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(sig, "Robin Vale <robin@example.com> "), sig)
		require.True(t, strings.HasSuffix(sig, " +0000"), sig)
	})
}
