package aggregators

import (
	"log/slog"

	"socialdex/src/datamodels"
)

// IndexDefinition resolves the member authors of one named index against a snapshot.
type IndexDefinition interface {
	GetName() string
	GetKind() datamodels.IndexKind
	Members(snapshot *datamodels.Snapshot) ([]int64, error)
}

// TagIndex is every author currently carrying Tag.
type TagIndex struct {
	Tag string
}

func (t TagIndex) GetName() string               { return t.Tag }
func (t TagIndex) GetKind() datamodels.IndexKind { return datamodels.IndexKindTag }

func (t TagIndex) Members(snapshot *datamodels.Snapshot) ([]int64, error) {
	return snapshot.AuthorsWithTag(t.Tag), nil
}

// BasketIndex is the top K authors by follower count at the global latest timestamp.
type BasketIndex struct {
	Name         string
	K            int
	EligibleOnly bool
}

func (b BasketIndex) GetName() string               { return b.Name }
func (b BasketIndex) GetKind() datamodels.IndexKind { return datamodels.IndexKindBasket }

func (b BasketIndex) Members(snapshot *datamodels.Snapshot) ([]int64, error) {
	var eligible func(int64) bool
	if b.EligibleOnly {
		blueChip := make(map[int64]bool, len(snapshot.Authors))
		for _, a := range snapshot.Authors {
			blueChip[a.Id] = a.BlueChip
		}
		eligible = func(authorId int64) bool { return blueChip[authorId] }
	}
	return SelectBasket(snapshot.Latest, b.K, eligible)
}

// DefinitionsFromSnapshot enumerates one TagIndex per distinct tag plus the
// blue-chip basket when enabled. The basket replaces a tag of the same name.
func DefinitionsFromSnapshot(snapshot *datamodels.Snapshot, blueChip datamodels.BlueChipConfig) map[string]IndexDefinition {
	defs := make(map[string]IndexDefinition)
	for _, tag := range snapshot.Tags() {
		defs[tag] = TagIndex{Tag: tag}
	}
	if !blueChip.Enabled {
		return defs
	}
	if _, ok := defs[blueChip.Name]; ok {
		slog.Warn("Tag index shadowed by blue chip index", "name", blueChip.Name)
	}
	defs[blueChip.Name] = BasketIndex{
		Name:         blueChip.Name,
		K:            blueChip.Size,
		EligibleOnly: blueChip.EligibleOnly,
	}
	return defs
}
