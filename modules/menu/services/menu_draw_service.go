package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jacksonlee411/tree-menu/modules/menu/domain/menutree"
	"github.com/jacksonlee411/tree-menu/modules/menu/domain/ports"
	"github.com/jacksonlee411/tree-menu/pkg/logging"
	"github.com/jacksonlee411/tree-menu/pkg/metric"
)

// ErrRequestPathMissing means the draw was attempted outside of a request
// (no path in the context). It is a wiring error, not a data problem.
var ErrRequestPathMissing = errors.New("request_path_missing")

const (
	drawOutcomeOK       = "ok"
	drawOutcomeNotFound = "not_found"
	drawOutcomeError    = "error"
)

type DrawResult struct {
	MenuName    string
	CurrentPath string
	Forest      *menutree.Forest
}

type MenuDrawService struct {
	store    ports.MenuReadStore
	resolver menutree.URLResolver
	logger   *slog.Logger
	draws    metric.IncrementalCounter
}

type DrawOption func(*MenuDrawService)

func WithResolver(r menutree.URLResolver) DrawOption {
	return func(s *MenuDrawService) { s.resolver = r }
}

func WithLogger(l *slog.Logger) DrawOption {
	return func(s *MenuDrawService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDrawCounter counts draws by menu and outcome.
func WithDrawCounter(c metric.IncrementalCounter) DrawOption {
	return func(s *MenuDrawService) { s.draws = c }
}

func NewMenuDrawService(store ports.MenuReadStore, opts ...DrawOption) *MenuDrawService {
	s := &MenuDrawService{
		store:  store,
		logger: logging.Discard(),
		draws:  metric.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Draw renders menuName for the request path carried by ctx.
func (s *MenuDrawService) Draw(ctx context.Context, menuName string) (DrawResult, error) {
	path, ok := RequestPathFromContext(ctx)
	if !ok {
		return DrawResult{}, ErrRequestPathMissing
	}
	return s.DrawPath(ctx, menuName, path)
}

// DrawPath fetches the menu once, builds the forest and marks the branch
// leading to requestPath. A menu without items is ErrMenuNotFound.
func (s *MenuDrawService) DrawPath(ctx context.Context, menuName string, requestPath string) (DrawResult, error) {
	menuName = strings.TrimSpace(menuName)
	current := menutree.NormalizePath(requestPath)

	items, err := s.store.ListMenuItems(ctx, menuName)
	if err != nil {
		s.draws.Increment(menuName, drawOutcomeError)
		return DrawResult{}, fmt.Errorf("list menu items %q: %w", menuName, err)
	}
	if len(items) == 0 {
		s.draws.Increment(menuName, drawOutcomeNotFound)
		s.logger.WarnContext(ctx, "menu not found or empty", slog.String("menu", menuName))
		return DrawResult{}, fmt.Errorf("menu %q: %w", menuName, ports.ErrMenuNotFound)
	}

	forest := menutree.BuildForest(items, s.resolver)
	active, matched := menutree.Annotate(forest, current)
	s.draws.Increment(menuName, drawOutcomeOK)

	attrs := []any{
		slog.String("menu", menuName),
		slog.String("path", current),
		slog.Int("items", len(items)),
		slog.Bool("matched", matched),
	}
	if matched {
		attrs = append(attrs, slog.Int64("active_item_id", forest.Node(active).Item.ID))
	}
	s.logger.DebugContext(ctx, "menu drawn", attrs...)

	return DrawResult{MenuName: menuName, CurrentPath: current, Forest: forest}, nil
}
