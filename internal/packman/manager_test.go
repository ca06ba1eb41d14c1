package packman

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvgharbigit/polybook-sub003/internal/entry"
	"github.com/kvgharbigit/polybook-sub003/internal/pack"
)

// buildTestPack builds a real es-en artifact and returns its directory
// and registry entry.
func buildTestPack(t *testing.T, pairID string) (string, pack.RegistryEntry) {
	t.Helper()
	dir := t.TempDir()
	b := &pack.Builder{OutputDir: dir, BaseURL: "http://placeholder", Version: "1"}
	result, err := b.Build(context.Background(), pairID, "test", []entry.Entry{
		{Headword: "casa", Translations: []string{"house"}, Definitions: []string{"a house or home"}},
	})
	require.NoError(t, err)
	return dir, result.RegistryEntry
}

// servePack exposes a built pack over HTTP and counts GET requests.
func servePack(t *testing.T, dir string, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	fileServer := http.FileServer(http.Dir(dir))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fileServer.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestManager(t *testing.T, registry pack.Registry) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir(), registry, nil)
	require.NoError(t, err)
	return m
}

func TestManager_Install(t *testing.T) {
	buildDir, regEntry := buildTestPack(t, "es-en")
	var hits atomic.Int64
	server := servePack(t, buildDir, &hits)
	regEntry.URL = server.URL + "/" + pack.ArtifactName("es-en")

	m := newTestManager(t, pack.Registry{"es-en": regEntry})

	record, err := m.Install(context.Background(), "es-en")
	require.NoError(t, err)
	assert.Equal(t, "es-en", record.PackID)
	assert.Equal(t, "es", record.SourceLang)
	assert.Equal(t, "en", record.TargetLang)
	assert.False(t, record.InstalledAt.IsZero())

	assert.Equal(t, StateInstalled, m.Status("es-en").State)

	storePath, ok := m.StorePath("es-en")
	require.True(t, ok)
	assert.FileExists(t, storePath)

	// Installed state survives a manager restart via the marker file.
	m2, err := NewManager(m.dir, pack.Registry{}, nil)
	require.NoError(t, err)
	assert.True(t, m2.IsLanguageAvailable("es"))
}

func TestManager_Install_AtMostOneDownload(t *testing.T) {
	buildDir, regEntry := buildTestPack(t, "es-en")
	var hits atomic.Int64
	server := servePack(t, buildDir, &hits)
	regEntry.URL = server.URL + "/" + pack.ArtifactName("es-en")

	m := newTestManager(t, pack.Registry{"es-en": regEntry})

	const callers = 5
	var wg sync.WaitGroup
	paths := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			record, err := m.Install(context.Background(), "es-en")
			errs[i] = err
			if err == nil {
				paths[i] = record.StorePath(m.dir)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), hits.Load(), "exactly one HTTP download")
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, paths[0], paths[i], "all callers observe the same result")
	}
	assert.Equal(t, StateInstalled, m.Status("es-en").State)
}

func TestManager_Install_IntegrityFailure(t *testing.T) {
	buildDir, regEntry := buildTestPack(t, "es-en")
	var hits atomic.Int64
	server := servePack(t, buildDir, &hits)
	regEntry.URL = server.URL + "/" + pack.ArtifactName("es-en")
	// Corrupt the expected digest so verification must fail.
	regEntry.Digest = "0000000000000000000000000000000000000000000000000000000000000000"

	m := newTestManager(t, pack.Registry{"es-en": regEntry})

	_, err := m.Install(context.Background(), "es-en")
	require.Error(t, err)
	assert.True(t, IsIntegrityError(err))

	status := m.Status("es-en")
	assert.Equal(t, StateFailed, status.State)
	assert.Contains(t, status.Reason, "integrity")

	// No dangling artifacts and no install directory.
	_, ok := m.StorePath("es-en")
	assert.False(t, ok)
	tmpFiles, err := os.ReadDir(filepath.Join(m.dir, ".tmp"))
	require.NoError(t, err)
	assert.Empty(t, tmpFiles, "corrupt artifact deleted")
}

func TestManager_Install_CorruptedByte(t *testing.T) {
	buildDir, regEntry := buildTestPack(t, "es-en")

	// Flip one byte of the artifact after the registry recorded its
	// digest.
	artifact := filepath.Join(buildDir, pack.ArtifactName("es-en"))
	raw, err := os.ReadFile(artifact)
	require.NoError(t, err)
	raw[len(raw)/2] ^= 0xff
	require.NoError(t, os.WriteFile(artifact, raw, 0644))

	var hits atomic.Int64
	server := servePack(t, buildDir, &hits)
	regEntry.URL = server.URL + "/" + pack.ArtifactName("es-en")

	m := newTestManager(t, pack.Registry{"es-en": regEntry})
	_, err = m.Install(context.Background(), "es-en")
	assert.True(t, IsIntegrityError(err), "single corrupted byte must fail install")
}

func TestManager_Install_UnknownPack(t *testing.T) {
	m := newTestManager(t, pack.Registry{})
	_, err := m.Install(context.Background(), "xx-yy")
	assert.ErrorIs(t, err, ErrUnknownPack)
}

func TestManager_Uninstall(t *testing.T) {
	buildDir, regEntry := buildTestPack(t, "es-en")
	var hits atomic.Int64
	server := servePack(t, buildDir, &hits)
	regEntry.URL = server.URL + "/" + pack.ArtifactName("es-en")

	m := newTestManager(t, pack.Registry{"es-en": regEntry})
	_, err := m.Install(context.Background(), "es-en")
	require.NoError(t, err)

	require.NoError(t, m.Uninstall("es-en"))
	assert.False(t, m.IsLanguageAvailable("es"))
	_, ok := m.StorePath("es-en")
	assert.False(t, ok)

	assert.Error(t, m.Uninstall("es-en"), "double uninstall errors")
}

func TestManager_MissingLanguages(t *testing.T) {
	buildDir, regEntry := buildTestPack(t, "es-en")
	var hits atomic.Int64
	server := servePack(t, buildDir, &hits)
	regEntry.URL = server.URL + "/" + pack.ArtifactName("es-en")

	m := newTestManager(t, pack.Registry{"es-en": regEntry})
	_, err := m.Install(context.Background(), "es-en")
	require.NoError(t, err)

	hitsBefore := hits.Load()
	assert.True(t, m.IsLanguageAvailable("es"))
	assert.False(t, m.IsLanguageAvailable("fr"))
	assert.Equal(t, []string{"fr", "de"}, m.MissingLanguages([]string{"es", "fr", "de"}))
	assert.Empty(t, m.MissingLanguages([]string{"es"}))
	assert.Equal(t, hitsBefore, hits.Load(), "availability queries perform no network I/O")
}

func TestManager_UsageCounters(t *testing.T) {
	buildDir, regEntry := buildTestPack(t, "es-en")
	var hits atomic.Int64
	server := servePack(t, buildDir, &hits)
	regEntry.URL = server.URL + "/" + pack.ArtifactName("es-en")

	m := newTestManager(t, pack.Registry{"es-en": regEntry})
	_, err := m.Install(context.Background(), "es-en")
	require.NoError(t, err)

	m.RecordLookup("es-en")
	m.RecordLookup("es-en")
	m.RecordTranslation("es-en")
	// Unknown packs are ignored.
	m.RecordLookup("zz-zz")

	// Counters are persisted: reload from disk.
	m2, err := NewManager(m.dir, pack.Registry{}, nil)
	require.NoError(t, err)
	records := m2.Installed()
	require.Len(t, records, 1)
	assert.Equal(t, int64(2), records[0].Usage.Lookups)
	assert.Equal(t, int64(1), records[0].Usage.Translations)
}
