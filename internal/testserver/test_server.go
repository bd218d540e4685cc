// Package testserver starts a full tracker HTTP stack for black-box tests.
package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/generate"
	"github.com/rpggio/genai-tracker/internal/mcp"
	"github.com/rpggio/genai-tracker/internal/sqlite"
	"github.com/rpggio/genai-tracker/internal/transport"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server *httptest.Server
	DB     *sqlite.DB
	Store  *project.Store
	Token  string
}

// Generator returns a fixed checklist payload for every request.
type Generator struct {
	Raw string
	Err error
}

func (g *Generator) Generate(_ context.Context, req generate.Request) (*generate.Response, error) {
	if g.Err != nil {
		return nil, g.Err
	}
	return generate.NewResponse(g.Raw, "test-model", req.Normalized().ProjectStage, time.Now()), nil
}

func (g *Generator) Model() string { return "test-model" }
func (g *Generator) HasKey() bool  { return true }

func New(t *testing.T, token string, gen *Generator) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	if gen == nil {
		gen = &Generator{}
	}
	store := project.NewStore(sqlite.NewStateRepository(sqlite.NewKVStore(db)), gen, nil)
	store.Load(context.Background())

	mcpServer := mcp.NewServer(mcp.Config{Store: store})
	server := httptest.NewServer(transport.NewServer(transport.Options{
		Store:     store,
		Generator: gen,
		Auth:      transport.TokenMiddleware(token),
		MCP: sdkmcp.NewStreamableHTTPHandler(
			func(*http.Request) *sdkmcp.Server { return mcpServer },
			nil,
		),
	}))

	ts := &TestServer{
		Server: server,
		DB:     db,
		Store:  store,
		Token:  token,
	}

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// Connect opens an MCP client session against /mcp with the bearer token.
func (ts *TestServer) Connect(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: &http.Client{Transport: &bearerTransport{token: ts.Token}},
	}, nil)
	if err != nil {
		cancel()
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() {
		session.Close()
		cancel()
	})
	return session
}

type bearerTransport struct {
	token string
}

func (b *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if b.token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	return http.DefaultTransport.RoundTrip(req)
}
