package collections

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"sgfkit/internal/bootstrap"
	"sgfkit/internal/domain/collection"
	"sgfkit/internal/domain/sgf"
	errs "sgfkit/internal/errors"
	"sgfkit/internal/parser"
)

type CollectionStore interface {
	Save(ctx context.Context, record collection.StoredCollection) error
	GetByID(ctx context.Context, id string) (collection.StoredCollection, error)
	LoadSGF(ctx context.Context, id string) (string, error)
	List(ctx context.Context, pageNum int) (*collection.CollectionPage, error)
	Delete(ctx context.Context, id string) error
}

type CollectionUseCase struct {
	cfg    bootstrap.Config
	log    *zap.SugaredLogger
	store  CollectionStore
	strict *parser.Parser
	lax    *parser.Parser
	now    func() time.Time
	newID  func() string
}

func NewCollectionUseCase(cfg bootstrap.Config, log *zap.SugaredLogger, store CollectionStore) *CollectionUseCase {
	return &CollectionUseCase{
		cfg:    cfg,
		log:    log,
		store:  store,
		strict: parser.New(log, parser.Strict),
		lax:    parser.New(log, parser.Lax),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

func (u *CollectionUseCase) StrictByDefault() bool {
	return u.cfg.StrictParsing
}

func (u *CollectionUseCase) Parse(text string, strict bool) (*sgf.Collection, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errs.ErrEmptyInput
	}
	if u.cfg.MaxSgfBytes > 0 && int64(len(text)) > u.cfg.MaxSgfBytes {
		return nil, errors.Wrapf(errs.ErrInputTooLarge, "%d bytes, limit %d", len(text), u.cfg.MaxSgfBytes)
	}
	if strict {
		return u.strict.Parse(text)
	}
	return u.lax.Parse(text)
}

// Create parses text and stores it. An empty name falls back to the game
// name (GN) of the first game.
func (u *CollectionUseCase) Create(ctx context.Context, name, text string, strict bool) (*collection.CollectionResponse, error) {
	tree, err := u.Parse(text, strict)
	if err != nil {
		return nil, err
	}

	if name == "" {
		if gn, ok := tree.GameInfo("GN"); ok {
			name = gn.String()
		}
	}

	record := collection.StoredCollection{
		ID:        u.newID(),
		Name:      name,
		CreatedAt: u.now().UTC(),
		Strict:    strict,
		GameCount: len(tree.Games()),
		NodeCount: tree.NodeCount(),
		GameInfo:  collection.GameInfoOf(tree),
		Sgf:       text,
	}

	if err := u.store.Save(ctx, record); err != nil {
		u.log.Errorw("failed to save collection", "name", name, "error", err)
		return nil, err
	}

	return &collection.CollectionResponse{StoredCollection: record, Tree: tree}, nil
}

func (u *CollectionUseCase) Get(ctx context.Context, id string) (*collection.CollectionResponse, error) {
	record, err := u.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tree, err := u.lax.Parse(record.Sgf)
	if err != nil {
		return nil, errors.Wrapf(err, "stored collection %s", id)
	}
	return &collection.CollectionResponse{StoredCollection: record, Tree: tree}, nil
}

// load rebuilds the tree from the cached text. Stored text already passed
// its checker once, so it is re-read in lax mode.
func (u *CollectionUseCase) load(ctx context.Context, id string) (*sgf.Collection, error) {
	text, err := u.store.LoadSGF(ctx, id)
	if err != nil {
		return nil, err
	}
	tree, err := u.lax.Parse(text)
	if err != nil {
		return nil, errors.Wrapf(err, "stored collection %s", id)
	}
	return tree, nil
}

// SGF returns the stored collection re-serialised in canonical form.
func (u *CollectionUseCase) SGF(ctx context.Context, id string) (string, error) {
	tree, err := u.load(ctx, id)
	if err != nil {
		return "", err
	}
	return tree.String(), nil
}

func (u *CollectionUseCase) MainLine(ctx context.Context, id string, game int) (*collection.MainLineResponse, error) {
	tree, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	root, ok := tree.Game(game)
	if !ok {
		return nil, errors.Wrapf(errs.ErrGameNotFound, "game %d of %d", game, len(tree.Games()))
	}

	line := root.MainLine()
	nodes := make([]*sgf.Properties, 0, len(line))
	for _, node := range line {
		nodes = append(nodes, node.Properties())
	}
	return &collection.MainLineResponse{CollectionID: id, Game: game, Nodes: nodes}, nil
}

func (u *CollectionUseCase) List(ctx context.Context, pageNum int) (*collection.CollectionPage, error) {
	return u.store.List(ctx, pageNum)
}

func (u *CollectionUseCase) Delete(ctx context.Context, id string) error {
	return u.store.Delete(ctx, id)
}

// importPath resolves dir against the configured import root. Paths that
// leave the root are refused, and an empty root disables imports.
func (u *CollectionUseCase) importPath(dir string) (string, error) {
	if u.cfg.ImportRoot == "" {
		return "", errors.Wrap(errs.ErrImportForbidden, "IMPORT_ROOT is not set")
	}
	base, err := filepath.Abs(u.cfg.ImportRoot)
	if err != nil {
		return "", errors.Wrap(err, "resolve import root")
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(base, dir)
	}
	dir = filepath.Clean(dir)

	rel, err := filepath.Rel(base, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(errs.ErrImportForbidden, "%s", dir)
	}
	return dir, nil
}

// ImportDirectory stores every .sgf file below dir, which must lie inside
// the import root. A file that fails to parse or store is reported in the
// response and does not stop the walk.
func (u *CollectionUseCase) ImportDirectory(ctx context.Context, dir string, strict bool) (*collection.ImportResponse, error) {
	root, err := u.importPath(dir)
	if err != nil {
		return nil, err
	}

	resp := &collection.ImportResponse{
		Imported: []collection.StoredCollection{},
		Failed:   []collection.ImportFailure{},
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".sgf") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			resp.Failed = append(resp.Failed, collection.ImportFailure{Path: path, Error: err.Error()})
			return nil
		}

		name := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		created, err := u.Create(ctx, name, string(data), strict)
		if err != nil {
			u.log.Warnw("sgf import failed", "path", path, "error", err)
			resp.Failed = append(resp.Failed, collection.ImportFailure{Path: path, Error: err.Error()})
			return nil
		}
		resp.Imported = append(resp.Imported, created.StoredCollection)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "import %s", root)
	}

	u.log.Infow("sgf import finished", "root", root, "imported", len(resp.Imported), "failed", len(resp.Failed))
	return resp, nil
}
