package integration_test

import (
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rpggio/genai-tracker/internal/bridge"
	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/extension"
	"github.com/rpggio/genai-tracker/internal/sqlite"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	ctx   context.Context
	db    *sqlite.DB
	store *project.Store
	addr  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := project.NewStore(sqlite.NewStateRepository(sqlite.NewKVStore(db)), nil, nil)
	store.Load(ctx)

	hub := bridge.NewHub(nil)
	page := bridge.NewPageEndpoint(store, hub, nil)
	t.Cleanup(page.Close)
	hub.OnConnect(page.SendSnapshot)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = hub.Serve(ctx, ln) }()

	return &testEnv{ctx: ctx, db: db, store: store, addr: ln.Addr().String()}
}

// connectExtension wires an extension process: a link to the page, a mirror
// over a fresh storage area and a watcher forwarding storage edits.
func (env *testEnv) connectExtension(t *testing.T) *extension.Mirror {
	t.Helper()
	area, err := extension.NewArea(t.TempDir())
	require.NoError(t, err)

	conn, err := net.Dial("tcp", env.addr)
	require.NoError(t, err)
	link := bridge.NewLink(env.ctx, conn, nil)
	t.Cleanup(func() { _ = link.Close() })

	mirror := extension.NewMirror(area, link, nil)
	t.Cleanup(mirror.Close)

	watcher, err := extension.NewWatcher(area.Dir(), 20*time.Millisecond, func(ctx context.Context, key string) {
		if key == extension.StateKey {
			_ = mirror.Changed(ctx)
		}
	}, nil)
	require.NoError(t, err)
	require.NoError(t, watcher.Start(env.ctx))
	t.Cleanup(func() { _ = watcher.Stop() })

	return mirror
}

func mirrorHas(t *testing.T, mirror *extension.Mirror, fn func(extension.MirrorState) bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		st, err := mirror.State(context.Background())
		return err == nil && fn(st)
	}, 5*time.Second, 20*time.Millisecond)
}

func TestIntegration_NewPeerReceivesSnapshot(t *testing.T) {
	env := newTestEnv(t)

	p, err := env.store.CreateProject(env.ctx, "Greeting")
	require.NoError(t, err)
	_, err = env.store.AddCustomItem(env.ctx, p.ID, "Record random seeds", "Data")
	require.NoError(t, err)

	mirror := env.connectExtension(t)
	mirrorHas(t, mirror, func(st extension.MirrorState) bool {
		return st.ProjectID() == p.ID && len(st.Checklist) == 1
	})

	st, err := mirror.State(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Greeting", st.ProjectName())
	require.Equal(t, "Record random seeds", st.Checklist[0].Text)
}

func TestIntegration_PageMutationsReachExtension(t *testing.T) {
	env := newTestEnv(t)
	mirror := env.connectExtension(t)

	p, err := env.store.CreateProject(env.ctx, "Broadcast")
	require.NoError(t, err)
	mirrorHas(t, mirror, func(st extension.MirrorState) bool {
		return st.ProjectID() == p.ID
	})

	it, err := env.store.AddCustomItem(env.ctx, p.ID, "Freeze the eval split", "")
	require.NoError(t, err)
	_, err = env.store.MutateItem(env.ctx, p.ID, it.ID, project.Toggle{})
	require.NoError(t, err)

	mirrorHas(t, mirror, func(st extension.MirrorState) bool {
		return len(st.Checklist) == 1 && st.Checklist[0].Checked && len(st.Timeline) == 2
	})

	require.NoError(t, env.store.DeleteProject(env.ctx, p.ID))
	mirrorHas(t, mirror, func(st extension.MirrorState) bool {
		return st.ProjectID() == "" && len(st.Checklist) == 0
	})
}

func TestIntegration_ExtensionEditsReachPageAndPersist(t *testing.T) {
	env := newTestEnv(t)

	p, err := env.store.CreateProject(env.ctx, "Round trip")
	require.NoError(t, err)
	it, err := env.store.AddCustomItem(env.ctx, p.ID, "Pin library versions", "Environment")
	require.NoError(t, err)

	mirror := env.connectExtension(t)
	mirrorHas(t, mirror, func(st extension.MirrorState) bool {
		return st.ProjectID() == p.ID && len(st.Checklist) == 1
	})

	_, err = mirror.Toggle(env.ctx, it.ID)
	require.NoError(t, err)
	_, err = mirror.LogChange(env.ctx, it.ID, "requirements.txt committed")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := env.store.Get(p.ID)
		return err == nil && len(got.Timeline) == 3 && got.Checklist[0].Checked
	}, 5*time.Second, 20*time.Millisecond)

	// The applied update is persisted: a store loaded from the same database
	// sees the extension's edits.
	reloaded := project.NewStore(sqlite.NewStateRepository(sqlite.NewKVStore(env.db)), nil, nil)
	reloaded.Load(context.Background())
	got, err := reloaded.Get(p.ID)
	require.NoError(t, err)
	require.True(t, got.Checklist[0].Checked)
	require.Len(t, got.Timeline, 3)
	require.Len(t, got.Checklist[0].Changes, 3)
}

func TestIntegration_StaleExtensionUpdateIgnored(t *testing.T) {
	env := newTestEnv(t)

	p, err := env.store.CreateProject(env.ctx, "Versions")
	require.NoError(t, err)
	it, err := env.store.AddCustomItem(env.ctx, p.ID, "Track prompt templates", "")
	require.NoError(t, err)

	mirror := env.connectExtension(t)
	mirrorHas(t, mirror, func(st extension.MirrorState) bool {
		return st.ProjectID() == p.ID && len(st.Checklist) == 1
	})

	before, err := env.store.Get(p.ID)
	require.NoError(t, err)

	// Re-sending the mirror's unchanged copy carries the page's own version.
	require.NoError(t, mirror.Changed(env.ctx))
	time.Sleep(100 * time.Millisecond)

	after, err := env.store.Get(p.ID)
	require.NoError(t, err)
	require.Equal(t, before.Version, after.Version)
	require.False(t, after.Checklist[0].Checked)
	require.Equal(t, it.ID, after.Checklist[0].ID)
}
