package collection

import (
	"time"

	"sgfkit/internal/domain/sgf"
)

// StoredCollection is the metadata kept for an uploaded SGF document. The
// text itself is the source of truth, the tree is rebuilt on read.
type StoredCollection struct {
	ID        string            `json:"id" bson:"_id"`
	Name      string            `json:"name" bson:"name"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
	Strict    bool              `json:"strict" bson:"strict"`
	GameCount int               `json:"game_count" bson:"game_count"`
	NodeCount int               `json:"node_count" bson:"node_count"`
	GameInfo  map[string]string `json:"game_info,omitempty" bson:"game_info,omitempty"`
	Sgf       string            `json:"-" bson:"sgf"`
}

type CollectionPage struct {
	PageNum     int                `json:"page_num"`
	TotalPages  int                `json:"total_pages"`
	Total       int64              `json:"total"`
	Collections []StoredCollection `json:"collections"`
}

type CollectionResponse struct {
	StoredCollection
	Tree *sgf.Collection `json:"tree"`
}

type ParseResponse struct {
	GameCount int             `json:"game_count"`
	NodeCount int             `json:"node_count"`
	Tree      *sgf.Collection `json:"tree"`
}

type MainLineResponse struct {
	CollectionID string            `json:"collection_id"`
	Game         int               `json:"game"`
	Nodes        []*sgf.Properties `json:"nodes"`
}

type ImportRequest struct {
	Path   string `json:"path"`
	Strict *bool  `json:"strict,omitempty"`
}

type ImportFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type ImportResponse struct {
	Imported []StoredCollection `json:"imported"`
	Failed   []ImportFailure    `json:"failed"`
}

// GameInfoIdentities are copied from the first game's root into
// StoredCollection.GameInfo for listing and search.
var GameInfoIdentities = []string{"GM", "FF", "SZ", "PB", "PW", "BR", "WR", "KM", "RE", "DT", "EV", "GN", "RU"}

func NewParseResponse(tree *sgf.Collection) ParseResponse {
	return ParseResponse{
		GameCount: len(tree.Games()),
		NodeCount: tree.NodeCount(),
		Tree:      tree,
	}
}

// GameInfoOf extracts the single-valued game-info properties present on the
// first game's root node.
func GameInfoOf(tree *sgf.Collection) map[string]string {
	info := make(map[string]string)
	for _, id := range GameInfoIdentities {
		if v, ok := tree.GameInfo(id); ok && !v.IsList() {
			info[id] = v.String()
		}
	}
	if len(info) == 0 {
		return nil
	}
	return info
}
