package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/uifind/internal/criteria"
	"github.com/1broseidon/uifind/internal/item"
	"github.com/1broseidon/uifind/internal/lookup"
	"github.com/1broseidon/uifind/internal/platform"
	"github.com/1broseidon/uifind/internal/session"
	"github.com/1broseidon/uifind/internal/store"
)

const (
	ServerName    = "uifind"
	ServerVersion = "0.1.0"
)

// Catalog lists persisted position maps.
type Catalog interface {
	List() ([]string, error)
	Load(identity string) (*store.Snapshot, error)
}

// Server exposes item lookups as MCP tools. Window sessions stay open for the
// life of the server so repeated lookups hit the position fast path.
type Server struct {
	mcpServer *mcpsdk.Server
	app       *session.Application
	catalog   Catalog
	logger    *slog.Logger

	// mu serializes tool calls; sessions are not safe for concurrent use.
	mu       sync.Mutex
	sessions map[string]*session.Window
}

// NewServer creates an MCP server over app. catalog may be nil when
// persistence is disabled.
func NewServer(app *session.Application, catalog Catalog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		app:      app,
		catalog:  catalog,
		logger:   logger,
		sessions: make(map[string]*session.Window),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close persists every open window session.
func (s *Server) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*session.Window)
	s.app.Close()
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "find_item",
		Description: "Find a UI item inside a top-level window by automation id, name, control type or class. Items found before are re-checked at their remembered screen position first; otherwise the window's element tree is searched until the timeout expires. Returns found=false when nothing matched.",
	}, s.handleFindItem)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "probe_point",
		Description: "Return the deepest UI element at a screen coordinate.",
	}, s.handleProbePoint)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_cache",
		Description: "List windows with remembered item positions, including sessions opened by this server.",
	}, s.handleListCache)
}

func (s *Server) handleFindItem(_ context.Context, _ *mcpsdk.CallToolRequest, args FindItemInput) (*mcpsdk.CallToolResult, FindItemOutput, error) {
	if args.Window == "" {
		return nil, FindItemOutput{}, fmt.Errorf("window is required")
	}
	crit := criteria.Criteria{
		AutomationID: args.AutomationID,
		Name:         args.Name,
		ControlType:  args.ControlType,
		ClassName:    args.ClassName,
		CustomType:   args.CustomType,
		Scope:        args.Scope,
	}.Normalize()
	if crit.IsZero() {
		return nil, FindItemOutput{}, fmt.Errorf("at least one of automation_id, name, control_type or class_name is required")
	}

	var opts []lookup.GetOption
	if args.TimeoutMs != nil {
		opts = append(opts, lookup.WithTimeout(time.Duration(*args.TimeoutMs)*time.Millisecond))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	win, err := platform.WaitForWindow(s.app.Backend(), args.Window, time.Duration(args.WaitMs)*time.Millisecond)
	if err != nil {
		return nil, FindItemOutput{}, err
	}
	w := s.windowSession(win)

	res := w.Get(nil, crit, nil, opts...)
	out := FindItemOutput{
		Found:    res.Found(),
		Path:     res.Path.String(),
		Window:   w.Identifier(),
		Criteria: crit.String(),
	}
	if res.Status == lookup.Failed {
		s.logger.Warn("find_item failed", "window", w.Identifier(), "criteria", crit.String(), "error", res.Err)
		return nil, FindItemOutput{}, res.Err
	}
	if res.Found() {
		out.Item = itemInfo(res.Item)
	}
	s.logger.Info("find_item", "window", w.Identifier(), "criteria", crit.String(), "found", out.Found, "path", out.Path)
	return nil, out, nil
}

// windowSession returns the open session for win, opening and registering one
// on first use.
func (s *Server) windowSession(win platform.Window) *session.Window {
	identity := session.WindowIdentity(win)
	if w, ok := s.sessions[identity]; ok {
		w.LocationChanged(win.Location())
		return w
	}

	w := s.app.WindowSession(session.Cached(identity))
	if err := w.Register(win); err != nil {
		s.logger.Warn("failed to focus window", "window", identity, "error", err)
	}
	s.sessions[identity] = w
	return w
}

func (s *Server) handleProbePoint(_ context.Context, _ *mcpsdk.CallToolRequest, args ProbePointInput) (*mcpsdk.CallToolResult, ProbePointOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, err := s.app.Backend().ElementAtPoint(platform.Point{X: args.X, Y: args.Y})
	if err != nil {
		return nil, ProbePointOutput{}, fmt.Errorf("probe (%d,%d): %w", args.X, args.Y, err)
	}
	if el == nil {
		return nil, ProbePointOutput{}, nil
	}
	return nil, ProbePointOutput{Found: true, Element: elementInfo(*el, "")}, nil
}

func (s *Server) handleListCache(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListCacheInput) (*mcpsdk.CallToolResult, ListCacheOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byIdentity := make(map[string]*CachedWindow)
	var order []string
	add := func(cw CachedWindow) {
		if existing, ok := byIdentity[cw.Identity]; ok {
			*existing = cw
			return
		}
		c := cw
		byIdentity[cw.Identity] = &c
		order = append(order, cw.Identity)
	}

	if s.catalog != nil {
		identities, err := s.catalog.List()
		if err != nil {
			return nil, ListCacheOutput{}, err
		}
		for _, identity := range identities {
			snap, err := s.catalog.Load(identity)
			if err != nil {
				s.logger.Debug("skipping unreadable position map", "identity", identity, "error", err)
				continue
			}
			add(CachedWindow{
				Identity:       identity,
				Entries:        len(snap.Entries),
				WindowPosition: snap.WindowPosition.String(),
				SavedAtUTC:     snap.SavedAt,
			})
		}
	}

	// Open sessions reflect positions not yet flushed to disk.
	for identity, w := range s.sessions {
		add(CachedWindow{
			Identity:       identity,
			Entries:        w.Cache().Len(),
			WindowPosition: w.Cache().WindowPosition().String(),
			Open:           true,
		})
	}

	sort.Strings(order)
	out := ListCacheOutput{Windows: make([]CachedWindow, 0, len(order))}
	for _, identity := range order {
		out.Windows = append(out.Windows, *byIdentity[identity])
	}
	return nil, out, nil
}

func itemInfo(it item.Item) *ItemInfo {
	return elementInfo(it.Element(), it.CustomType())
}

func elementInfo(el platform.Element, customType string) *ItemInfo {
	return &ItemInfo{
		Handle:       uint32(el.Handle),
		AutomationID: el.AutomationID,
		Name:         el.Name,
		ControlType:  el.ControlType,
		ClassName:    el.ClassName,
		CustomType:   customType,
		X:            el.Bounds.X,
		Y:            el.Bounds.Y,
		Width:        el.Bounds.Width,
		Height:       el.Bounds.Height,
	}
}
